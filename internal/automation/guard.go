package automation

import (
	"context"
	"time"

	"cashbox/internal/model"
)

// DefaultDedupWindow is the lookback horizon for suppressing re-execution
// while a match is still inside its catch-up window.
const DefaultDedupWindow = 5 * time.Minute

// Guard decides whether a matched window's action already ran. The check is
// scoped per (client, kind, period id) so two same-kind windows on one day
// cannot suppress each other.
type Guard struct {
	log    OperationLog
	window time.Duration
	logger Logger
}

func NewGuard(log OperationLog, window time.Duration, logger Logger) *Guard {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Guard{log: log, window: window, logger: logger}
}

// AlreadyExecuted reports whether a success for this exact window was logged
// within the dedup horizon. Errors are reported as not-executed; the register
// transitions themselves are idempotent, so a false negative here costs a
// redundant no-op, never a duplicate effect.
func (g *Guard) AlreadyExecuted(ctx context.Context, clientID int64, opType model.OperationType, period *model.SchedulePeriod) bool {
	done, err := g.log.HasRecentSuccess(ctx, clientID, opType, period.ID, g.window)
	if err != nil {
		g.logger.Error("dedup lookup failed",
			"client_id", clientID,
			"operation", string(opType),
			"error", err)
		return false
	}
	if done {
		g.logger.Debug("operation suppressed by dedup",
			"client_id", clientID,
			"operation", string(opType),
			"period_id", period.ID)
	}
	return done
}
