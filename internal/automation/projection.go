package automation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cashbox/internal/model"
)

// ScheduledOperation is one entry of the "next scheduled operations" view:
// what the matcher would fire if the clock reached the scheduled time. Purely
// a projection; computing it executes nothing.
type ScheduledOperation struct {
	Type            model.OperationType `json:"type"`
	ScheduledTime   time.Time           `json:"scheduled_time"`
	PeriodID        int64               `json:"period_id"`
	PeriodName      string              `json:"period_name"`
	ExecutedToday   bool                `json:"executed_today"`
	ExecutionStatus string              `json:"execution_status"` // "executed" or "scheduled"
}

// Projector computes upcoming operations by re-running the window
// configuration forward over the next days.
type Projector struct {
	store ScheduleStore
	log   OperationLog
	now   func() time.Time
}

func NewProjector(store ScheduleStore, log OperationLog) *Projector {
	return &Projector{store: store, log: log, now: time.Now}
}

// NextOperations returns up to limit upcoming operations for a merchant over
// the next days. Entries already in the past today are only included when a
// success for them was logged (so the view shows what ran).
func (p *Projector) NextOperations(ctx context.Context, clientID int64, days, limit int) ([]ScheduledOperation, error) {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 10
	}

	cfg, err := p.store.GetClientConfig(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get config for client %d: %w", clientID, err)
	}
	local, err := LocalTime(p.now(), cfg.Timezone)
	if err != nil {
		return nil, err
	}

	var ops []ScheduledOperation
	for i := 0; i < days; i++ {
		day := local.AddDate(0, 0, i)
		dayOfWeek := int(day.Weekday())
		if dayOfWeek == 0 {
			dayOfWeek = 7
		}

		periods, err := p.store.GetPeriodsForDay(ctx, clientID, dayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("get periods for day %d: %w", dayOfWeek, err)
		}

		dayStart, dayEnd := DayBounds(day)
		today := i == 0

		for j := range periods {
			period := &periods[j]
			if period.AutoOpenEnabled {
				at := time.Date(day.Year(), day.Month(), day.Day(), period.OpenHour, period.OpenMinute, 0, 0, day.Location())
				op, include := p.projectOne(ctx, clientID, model.OperationAutoOpen, period, at, local, today, dayStart, dayEnd)
				if include {
					ops = append(ops, op)
				}
			}
			if period.AutoCloseEnabled {
				at := time.Date(day.Year(), day.Month(), day.Day(), period.CloseHour, period.CloseMinute, 0, 0, day.Location())
				op, include := p.projectOne(ctx, clientID, model.OperationAutoClose, period, at, local, today, dayStart, dayEnd)
				if include {
					ops = append(ops, op)
				}
			}
		}
	}

	sort.Slice(ops, func(a, b int) bool {
		return ops[a].ScheduledTime.Before(ops[b].ScheduledTime)
	})
	if len(ops) > limit {
		ops = ops[:limit]
	}
	return ops, nil
}

func (p *Projector) projectOne(ctx context.Context, clientID int64, opType model.OperationType, period *model.SchedulePeriod, at, local time.Time, today bool, dayStart, dayEnd time.Time) (ScheduledOperation, bool) {
	op := ScheduledOperation{
		Type:            opType,
		ScheduledTime:   at,
		PeriodID:        period.ID,
		PeriodName:      period.Name,
		ExecutionStatus: "scheduled",
	}

	if today {
		executed, err := p.log.WasExecutedToday(ctx, clientID, opType, period.ID, dayStart, dayEnd)
		if err == nil && executed {
			op.ExecutedToday = true
			op.ExecutionStatus = "executed"
		}
	}

	// Past entries stay visible only when they actually ran.
	if at.Before(local) && !op.ExecutedToday {
		return op, false
	}
	return op, true
}
