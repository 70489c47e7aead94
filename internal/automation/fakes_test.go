package automation

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"cashbox/internal/model"
)

// memStore is an in-memory implementation of the engine's collaborator
// interfaces, shared by the package tests.
type memStore struct {
	mu sync.Mutex

	clients   []int64
	configs   map[int64]*model.ClientConfig
	periods   map[int64][]model.SchedulePeriod // key: clientID
	registers map[string]*model.CashRegister   // key: "clientID/date"
	log       []model.OperationLogEntry

	nextRegisterID int64
	nextLogID      int64

	failCreateRegister bool
	failReport         bool
	reportCalls        int

	now func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		configs:   make(map[int64]*model.ClientConfig),
		periods:   make(map[int64][]model.SchedulePeriod),
		registers: make(map[string]*model.CashRegister),
		now:       time.Now,
	}
}

func (m *memStore) addClient(id int64, tz string, enabled bool) {
	m.clients = append(m.clients, id)
	m.configs[id] = &model.ClientConfig{
		ClientID:            id,
		Timezone:            tz,
		AutoScheduleEnabled: enabled,
	}
}

func (m *memStore) addPeriod(p model.SchedulePeriod) {
	m.periods[p.ClientID] = append(m.periods[p.ClientID], p)
}

func (m *memStore) ListActiveClientIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.clients, nil
}

func (m *memStore) GetClientConfig(ctx context.Context, clientID int64) (*model.ClientConfig, error) {
	// Like a real driver, every call fails once the context is gone.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[clientID]
	if !ok {
		cfg = model.DefaultClientConfig(clientID)
		m.configs[clientID] = cfg
	}
	return cfg, nil
}

func (m *memStore) GetPeriodsForDay(ctx context.Context, clientID int64, dayOfWeek int) ([]model.SchedulePeriod, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SchedulePeriod
	for _, p := range m.periods[clientID] {
		if p.DayOfWeek == dayOfWeek && p.IsActive {
			out = append(out, p)
		}
	}
	// priority then open time, the store contract
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if b.PriorityOrder < a.PriorityOrder ||
				(b.PriorityOrder == a.PriorityOrder && b.OpenMinuteOfDay() < a.OpenMinuteOfDay()) {
				out[j-1], out[j] = b, a
			}
		}
	}
	return out, nil
}

func regKey(clientID int64, date string) string {
	return fmt.Sprintf("%d/%s", clientID, date)
}

func (m *memStore) GetRegisterForDate(ctx context.Context, clientID int64, date string) (*model.CashRegister, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.registers[regKey(clientID, date)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) CreateRegister(ctx context.Context, r *model.CashRegister) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateRegister {
		return fmt.Errorf("register backend unavailable")
	}
	key := regKey(r.ClientID, r.Date)
	if _, exists := m.registers[key]; exists {
		return fmt.Errorf("register already exists for %s", key)
	}
	m.nextRegisterID++
	r.ID = m.nextRegisterID
	cp := *r
	m.registers[key] = &cp
	return nil
}

func (m *memStore) UpdateRegisterState(ctx context.Context, registerID int64, upd model.RegisterStateUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.registers {
		if r.ID == registerID {
			r.IsOpen = upd.IsOpen
			if upd.ClosedAt != nil {
				r.ClosedAt = upd.ClosedAt
			}
			if upd.ReopenedAt != nil {
				r.ReopenedAt = upd.ReopenedAt
			}
			return nil
		}
	}
	return fmt.Errorf("register %d not found", registerID)
}

func (m *memStore) InsertOperationLog(ctx context.Context, e *model.OperationLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLogID++
	e.ID = m.nextLogID
	e.CreatedAt = m.now()
	m.log = append(m.log, *e)
	return nil
}

func (m *memStore) HasRecentSuccess(ctx context.Context, clientID int64, opType model.OperationType, periodID int64, within time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-within)
	for _, e := range m.log {
		if e.ClientID == clientID && e.OperationType == opType &&
			e.Status == model.StatusSuccess && e.SchedulePeriodID == periodID &&
			!e.ExecutedTime.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) WasExecutedToday(ctx context.Context, clientID int64, opType model.OperationType, periodID int64, dayStart, dayEnd time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.log {
		if e.ClientID == clientID && e.OperationType == opType &&
			e.Status == model.StatusSuccess && e.SchedulePeriodID == periodID &&
			!e.ExecutedTime.Before(dayStart) && !e.ExecutedTime.After(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetOperationsLog(ctx context.Context, filter model.OperationLogFilter) ([]model.OperationLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.OperationLogEntry
	for _, e := range m.log {
		if e.ClientID != filter.ClientID {
			continue
		}
		if filter.OperationType != "" && e.OperationType != filter.OperationType {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// GenerateDaily implements ReportGenerator.
func (m *memStore) GenerateDaily(ctx context.Context, clientID int64, localDay time.Time) (*model.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportCalls++
	if m.failReport {
		return nil, fmt.Errorf("report backend unavailable")
	}
	return &model.DailyReport{
		ID:         int64(m.reportCalls),
		ClientID:   clientID,
		ReportDate: localDay.Format(DateLayout),
	}, nil
}

func (m *memStore) entries(clientID int64, opType model.OperationType) []model.OperationLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.OperationLogEntry
	for _, e := range m.log {
		if e.ClientID == clientID && e.OperationType == opType {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) register(clientID int64, date string) *model.CashRegister {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.registers[regKey(clientID, date)]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (m *memStore) registerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registers)
}
