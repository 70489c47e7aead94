package model

import (
	"fmt"
	"time"
)

// ClientConfig holds per-merchant automation settings.
// Created lazily with defaults the first time a merchant is looked up.
type ClientConfig struct {
	ID                        int64     `json:"id"`
	ClientID                  int64     `json:"client_id"`
	Timezone                  string    `json:"timezone"` // IANA name, e.g. "America/Argentina/Buenos_Aires"
	AutoScheduleEnabled       bool      `json:"auto_schedule_enabled"`
	NotificationEnabled       bool      `json:"notification_enabled"`
	NotificationMinutesBefore int       `json:"notification_minutes_before"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// DefaultClientConfig returns the configuration a merchant gets on first read.
func DefaultClientConfig(clientID int64) *ClientConfig {
	return &ClientConfig{
		ClientID:                  clientID,
		Timezone:                  "America/Argentina/Buenos_Aires",
		AutoScheduleEnabled:       true,
		NotificationEnabled:       false,
		NotificationMinutesBefore: 5,
	}
}

// SchedulePeriod is a named weekly window enabling auto-open and/or auto-close
// on one day of the week. Periods are soft-deleted via IsActive so the audit
// trail stays intact.
type SchedulePeriod struct {
	ID               int64     `json:"id"`
	ClientID         int64     `json:"client_id"`
	DayOfWeek        int       `json:"day_of_week"` // 1=Monday .. 7=Sunday
	Name             string    `json:"name"`
	OpenHour         int       `json:"open_hour"`
	OpenMinute       int       `json:"open_minute"`
	CloseHour        int       `json:"close_hour"`
	CloseMinute      int       `json:"close_minute"`
	AutoOpenEnabled  bool      `json:"auto_open_enabled"`
	AutoCloseEnabled bool      `json:"auto_close_enabled"`
	IsActive         bool      `json:"is_active"`
	PriorityOrder    int       `json:"priority_order"` // lower = evaluated first
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks ranges and rejects periods whose open and close times coincide.
func (p *SchedulePeriod) Validate() error {
	if p.DayOfWeek < 1 || p.DayOfWeek > 7 {
		return fmt.Errorf("day_of_week %d out of range 1..7", p.DayOfWeek)
	}
	if p.OpenHour < 0 || p.OpenHour > 23 || p.CloseHour < 0 || p.CloseHour > 23 {
		return fmt.Errorf("hour out of range 0..23")
	}
	if p.OpenMinute < 0 || p.OpenMinute > 59 || p.CloseMinute < 0 || p.CloseMinute > 59 {
		return fmt.Errorf("minute out of range 0..59")
	}
	if p.OpenMinuteOfDay() == p.CloseMinuteOfDay() {
		return fmt.Errorf("open and close time must differ (%02d:%02d)", p.OpenHour, p.OpenMinute)
	}
	return nil
}

// OpenMinuteOfDay returns the configured open time as minutes since midnight.
func (p *SchedulePeriod) OpenMinuteOfDay() int {
	return p.OpenHour*60 + p.OpenMinute
}

// CloseMinuteOfDay returns the configured close time as minutes since midnight.
func (p *SchedulePeriod) CloseMinuteOfDay() int {
	return p.CloseHour*60 + p.CloseMinute
}

// OpenLabel formats the open time as "HH:MM".
func (p *SchedulePeriod) OpenLabel() string {
	return fmt.Sprintf("%02d:%02d", p.OpenHour, p.OpenMinute)
}

// CloseLabel formats the close time as "HH:MM".
func (p *SchedulePeriod) CloseLabel() string {
	return fmt.Sprintf("%02d:%02d", p.CloseHour, p.CloseMinute)
}
