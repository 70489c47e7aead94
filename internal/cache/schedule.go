package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cashbox/internal/model"
)

// DefaultScheduleTTL keeps cached schedules short-lived: an edit propagates
// within a minute even if invalidation is missed.
const DefaultScheduleTTL = time.Minute

// JSONCache is the cache surface the schedule wrapper needs, implemented by
// Redis.
type JSONCache interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// scheduleSource is the underlying store being cached.
type scheduleSource interface {
	GetClientConfig(ctx context.Context, clientID int64) (*model.ClientConfig, error)
	GetPeriodsForDay(ctx context.Context, clientID int64, dayOfWeek int) ([]model.SchedulePeriod, error)
}

// ScheduleStore caches per-merchant schedule reads in front of the database.
// The scheduler hits these two queries for every merchant every minute, so
// they get a short TTL cache. Cache failures fall through to the source.
type ScheduleStore struct {
	source scheduleSource
	cache  JSONCache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewScheduleStore wraps source with a read-through cache.
func NewScheduleStore(source scheduleSource, cache JSONCache, ttl time.Duration, logger zerolog.Logger) *ScheduleStore {
	if ttl <= 0 {
		ttl = DefaultScheduleTTL
	}
	return &ScheduleStore{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "schedule-cache").Logger(),
	}
}

func configKey(clientID int64) string {
	return fmt.Sprintf("cashbox:config:%d", clientID)
}

func periodsKey(clientID int64, dayOfWeek int) string {
	return fmt.Sprintf("cashbox:periods:%d:%d", clientID, dayOfWeek)
}

// GetClientConfig returns the merchant config, cached.
func (s *ScheduleStore) GetClientConfig(ctx context.Context, clientID int64) (*model.ClientConfig, error) {
	var cached model.ClientConfig
	hit, err := s.cache.GetJSON(ctx, configKey(clientID), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Int64("client_id", clientID).Msg("config cache read failed")
	} else if hit {
		return &cached, nil
	}

	cfg, err := s.source.GetClientConfig(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, configKey(clientID), cfg, s.ttl); err != nil {
		s.logger.Warn().Err(err).Int64("client_id", clientID).Msg("config cache write failed")
	}
	return cfg, nil
}

// GetPeriodsForDay returns the merchant's windows for a weekday, cached.
func (s *ScheduleStore) GetPeriodsForDay(ctx context.Context, clientID int64, dayOfWeek int) ([]model.SchedulePeriod, error) {
	key := periodsKey(clientID, dayOfWeek)

	var cached []model.SchedulePeriod
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Int64("client_id", clientID).Msg("periods cache read failed")
	} else if hit {
		return cached, nil
	}

	periods, err := s.source.GetPeriodsForDay(ctx, clientID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, periods, s.ttl); err != nil {
		s.logger.Warn().Err(err).Int64("client_id", clientID).Msg("periods cache write failed")
	}
	return periods, nil
}

// Invalidate drops all cached entries for a merchant. Call after any config
// or period mutation.
func (s *ScheduleStore) Invalidate(ctx context.Context, clientID int64) error {
	keys := []string{configKey(clientID)}
	for day := 1; day <= 7; day++ {
		keys = append(keys, periodsKey(clientID, day))
	}
	return s.cache.Delete(ctx, keys...)
}
