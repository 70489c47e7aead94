package automation

import (
	"context"
	"fmt"
	"time"

	"cashbox/internal/model"
)

// Catch-up windows: a late tick still counts as on-time this many minutes
// after the target. Opens get the wider grace period since a missed open
// blocks the whole business day.
const (
	CatchUpOpenMinutes  = 120
	CatchUpCloseMinutes = 60
)

// Diagnostic reasons for a negative match. These are the expected steady
// state outside a window, not errors.
const (
	ReasonDisabled  = "auto schedule disabled for client"
	ReasonNoPeriods = "no periods configured for day"
	ReasonNoMatch   = "no matching window at current time"
)

// Decision is the outcome of evaluating one merchant/kind at one instant.
type Decision struct {
	ShouldExecute bool
	Period        *model.SchedulePeriod
	Reason        string

	// LocalTime is the evaluation instant in the merchant's timezone, set
	// whenever the config resolved. Downstream uses it for the register date
	// and the scheduled-time stamp.
	LocalTime time.Time
}

// Matcher finds the highest-priority eligible window for an operation kind.
type Matcher struct {
	store  ScheduleStore
	logger Logger
}

func NewMatcher(store ScheduleStore, logger Logger) *Matcher {
	return &Matcher{store: store, logger: logger}
}

// Match resolves the merchant's local time and walks that day's windows in
// priority order, returning the first whose execution window contains now.
// A timezone or store failure is a configuration error; everything else is a
// diagnostic reason on the Decision.
func (m *Matcher) Match(ctx context.Context, clientID int64, opType model.OperationType, now time.Time) (Decision, error) {
	cfg, err := m.store.GetClientConfig(ctx, clientID)
	if err != nil {
		return Decision{}, fmt.Errorf("get config for client %d: %w", clientID, err)
	}

	local, err := LocalTime(now, cfg.Timezone)
	if err != nil {
		return Decision{}, err
	}
	dec := Decision{LocalTime: local}

	if !cfg.AutoScheduleEnabled {
		dec.Reason = ReasonDisabled
		return dec, nil
	}

	dayOfWeek := int(local.Weekday())
	if dayOfWeek == 0 {
		dayOfWeek = 7
	}
	minuteOfDay := local.Hour()*60 + local.Minute()

	periods, err := m.store.GetPeriodsForDay(ctx, clientID, dayOfWeek)
	if err != nil {
		return Decision{}, fmt.Errorf("get periods for client %d day %d: %w", clientID, dayOfWeek, err)
	}
	if len(periods) == 0 {
		dec.Reason = fmt.Sprintf("%s %d", ReasonNoPeriods, dayOfWeek)
		return dec, nil
	}

	for i := range periods {
		p := &periods[i]
		if opType == model.OperationAutoOpen && !p.AutoOpenEnabled {
			continue
		}
		if opType == model.OperationAutoClose && !p.AutoCloseEnabled {
			continue
		}

		target := p.OpenMinuteOfDay()
		catchUp := CatchUpOpenMinutes
		if opType == model.OperationAutoClose {
			target = p.CloseMinuteOfDay()
			catchUp = CatchUpCloseMinutes
		}

		// The interval is closed on both ends: the minute-resolution tick
		// landing exactly at target+catchUp still fires. It never wraps
		// into the next day; past 23:59 it just ends.
		if minuteOfDay >= target && minuteOfDay <= target+catchUp {
			m.logger.Debug("window matched",
				"client_id", clientID,
				"operation", string(opType),
				"period", p.Name,
				"target_minute", target)
			dec.ShouldExecute = true
			dec.Period = p
			return dec, nil
		}
	}

	dec.Reason = ReasonNoMatch
	return dec, nil
}

// ScheduledTimeFor returns the instant, on the decision's local day, at which
// the matched kind was configured to fire.
func (d Decision) ScheduledTimeFor(opType model.OperationType) time.Time {
	if d.Period == nil {
		return time.Time{}
	}
	hour, minute := d.Period.OpenHour, d.Period.OpenMinute
	if opType == model.OperationAutoClose {
		hour, minute = d.Period.CloseHour, d.Period.CloseMinute
	}
	l := d.LocalTime
	return time.Date(l.Year(), l.Month(), l.Day(), hour, minute, 0, 0, l.Location())
}
