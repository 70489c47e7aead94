package automation

import (
	"context"
	"sync"
	"time"

	"cashbox/internal/model"
)

// SchedulerConfig holds configuration for the automation scheduler.
type SchedulerConfig struct {
	// CheckInterval is how often scheduled operations are evaluated.
	CheckInterval time.Duration
	// DedupWindow is the execution guard's lookback horizon.
	DedupWindow time.Duration
	// MaxConcurrent bounds how many merchants are processed in parallel
	// within one tick.
	MaxConcurrent int
	// OperationTimeout bounds each backend call inside an action.
	OperationTimeout time.Duration
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CheckInterval:    time.Minute,
		DedupWindow:      DefaultDedupWindow,
		MaxConcurrent:    4,
		OperationTimeout: 30 * time.Second,
	}
}

// Status is the observable state of the scheduler.
type Status struct {
	IsRunning    bool      `json:"is_running"`
	LastTickTime time.Time `json:"last_tick_time"`
}

// Scheduler drives the open/close decision pipeline for every merchant on a
// fixed period. Construct once at startup with injected collaborators; it
// holds no global state.
type Scheduler struct {
	config   SchedulerConfig
	clients  ClientDirectory
	matcher  *Matcher
	guard    *Guard
	executor *Executor
	store    ScheduleStore
	notifier Notifier
	logger   Logger
	metrics  *Metrics

	mu       sync.Mutex
	running  bool
	lastTick time.Time
	inFlight map[int64]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup

	now func() time.Time
}

// NewScheduler creates a scheduler. notifier may be nil.
func NewScheduler(
	config SchedulerConfig,
	clients ClientDirectory,
	store ScheduleStore,
	matcher *Matcher,
	guard *Guard,
	executor *Executor,
	notifier Notifier,
	logger Logger,
	metrics *Metrics,
) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	return &Scheduler{
		config:   config,
		clients:  clients,
		store:    store,
		matcher:  matcher,
		guard:    guard,
		executor: executor,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		inFlight: make(map[int64]bool),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the scheduler loop in the background. A second Start while
// running is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("scheduler already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("cash automation scheduler started",
		"check_interval", s.config.CheckInterval.String())

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop halts the loop. The in-flight tick is allowed to finish so no register
// is left mid-transition; no tick fires after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("cash automation scheduler stopped")
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the running flag and the last completed tick time.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{IsRunning: s.running, LastTickTime: s.lastTick}
}

// RunNow forces an immediate evaluation outside the timer. Used by the admin
// surface and tests.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.checkScheduledOperations(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped by context")
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkScheduledOperations(ctx)
		}
	}
}

// checkScheduledOperations is one tick: enumerate merchants and evaluate the
// open then close pipeline for each, isolating failures per merchant.
func (s *Scheduler) checkScheduledOperations(ctx context.Context) {
	// The caller's context only controls the loop. A tick that already
	// started must run to completion even while shutdown cancels it, or a
	// register is left mid-transition; the executor's per-call deadlines
	// still bound the work.
	ctx = context.WithoutCancel(ctx)

	start := s.now()

	clientIDs, err := s.clients.ListActiveClientIDs(ctx)
	if err != nil {
		s.logger.Error("failed to enumerate merchants", "error", err)
		return
	}

	s.logger.Debug("checking scheduled operations", "clients", len(clientIDs))
	if s.metrics != nil {
		s.metrics.ClientsChecked.Set(float64(len(clientIDs)))
	}

	sem := make(chan struct{}, s.config.MaxConcurrent)
	var wg sync.WaitGroup
	for _, clientID := range clientIDs {
		if !s.tryAcquire(clientID) {
			// Previous tick still working on this merchant; never run a
			// merchant concurrently with itself.
			s.logger.Debug("merchant still in flight, skipping", "client_id", clientID)
			if s.metrics != nil {
				s.metrics.IncInFlightSkipped()
			}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(id int64) {
			defer wg.Done()
			defer func() { <-sem }()
			defer s.release(id)
			s.processClient(ctx, id)
		}(clientID)
	}
	wg.Wait()

	s.mu.Lock()
	s.lastTick = s.now()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveTick(s.now().Sub(start).Seconds())
		s.metrics.LastTickTimestamp.Set(float64(s.now().Unix()))
	}
}

func (s *Scheduler) tryAcquire(clientID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[clientID] {
		return false
	}
	s.inFlight[clientID] = true
	return true
}

func (s *Scheduler) release(clientID int64) {
	s.mu.Lock()
	delete(s.inFlight, clientID)
	s.mu.Unlock()
}

// processClient evaluates open then close for one merchant. Any failure is
// recovered here so it cannot crash the loop or starve other merchants.
func (s *Scheduler) processClient(ctx context.Context, clientID int64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while processing merchant", "client_id", clientID, "panic", r)
		}
	}()

	s.evaluate(ctx, clientID, model.OperationAutoOpen)
	s.evaluate(ctx, clientID, model.OperationAutoClose)
	s.notifyUpcoming(ctx, clientID)
}

func (s *Scheduler) evaluate(ctx context.Context, clientID int64, opType model.OperationType) {
	now := s.now()
	dec, err := s.matcher.Match(ctx, clientID, opType, now)
	if err != nil {
		// Configuration error: skip this merchant, touch nothing.
		s.logger.Error("skipping merchant, configuration error",
			"client_id", clientID, "operation", string(opType), "error", err)
		return
	}
	if !dec.ShouldExecute {
		if dec.Reason != "" {
			s.logger.Debug("no action",
				"client_id", clientID, "operation", string(opType), "reason", dec.Reason)
		}
		return
	}

	// Guard check and transition form the critical section per merchant and
	// kind; the in-flight map above keeps them from interleaving across ticks.
	if s.guard.AlreadyExecuted(ctx, clientID, opType, dec.Period) {
		if s.metrics != nil {
			s.metrics.IncDedupSuppressed()
		}
		return
	}

	s.logger.Info("executing scheduled operation",
		"client_id", clientID, "operation", string(opType), "period", dec.Period.Name)

	switch opType {
	case model.OperationAutoOpen:
		err = s.executor.ExecuteAutoOpen(ctx, clientID, dec)
	case model.OperationAutoClose:
		err = s.executor.ExecuteAutoClose(ctx, clientID, dec)
	}
	if err != nil {
		// Already logged as a failed entry by the executor; recover here so
		// the rest of the tick proceeds.
		s.logger.Error("scheduled operation failed",
			"client_id", clientID, "operation", string(opType), "error", err)
	}
}

// notifyUpcoming sends a pre-alert when an enabled window's target time is
// exactly NotificationMinutesBefore away. The one-minute tick makes the
// equality check fire once per target.
func (s *Scheduler) notifyUpcoming(ctx context.Context, clientID int64) {
	if s.notifier == nil {
		return
	}

	cfg, err := s.store.GetClientConfig(ctx, clientID)
	if err != nil || !cfg.NotificationEnabled || cfg.NotificationMinutesBefore <= 0 {
		return
	}

	local, err := LocalTime(s.now(), cfg.Timezone)
	if err != nil {
		return
	}
	dayOfWeek := int(local.Weekday())
	if dayOfWeek == 0 {
		dayOfWeek = 7
	}
	minuteOfDay := local.Hour()*60 + local.Minute()

	periods, err := s.store.GetPeriodsForDay(ctx, clientID, dayOfWeek)
	if err != nil {
		return
	}

	for i := range periods {
		p := &periods[i]
		if p.AutoOpenEnabled && p.OpenMinuteOfDay()-minuteOfDay == cfg.NotificationMinutesBefore {
			at := time.Date(local.Year(), local.Month(), local.Day(), p.OpenHour, p.OpenMinute, 0, 0, local.Location())
			if err := s.notifier.UpcomingOperation(ctx, clientID, model.OperationAutoOpen, p, at); err != nil {
				s.logger.Error("upcoming-open alert failed", "client_id", clientID, "error", err)
			}
		}
		if p.AutoCloseEnabled && p.CloseMinuteOfDay()-minuteOfDay == cfg.NotificationMinutesBefore {
			at := time.Date(local.Year(), local.Month(), local.Day(), p.CloseHour, p.CloseMinute, 0, 0, local.Location())
			if err := s.notifier.UpcomingOperation(ctx, clientID, model.OperationAutoClose, p, at); err != nil {
				s.logger.Error("upcoming-close alert failed", "client_id", clientID, "error", err)
			}
		}
	}
}
