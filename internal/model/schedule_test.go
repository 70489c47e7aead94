package model

import "testing"

func TestSchedulePeriodValidate(t *testing.T) {
	base := SchedulePeriod{
		ClientID:    1,
		DayOfWeek:   2,
		Name:        "weekday",
		OpenHour:    9,
		OpenMinute:  0,
		CloseHour:   18,
		CloseMinute: 0,
	}

	tests := []struct {
		name    string
		mutate  func(p *SchedulePeriod)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *SchedulePeriod) {}},
		{name: "open equals close", mutate: func(p *SchedulePeriod) {
			p.CloseHour, p.CloseMinute = p.OpenHour, p.OpenMinute
		}, wantErr: true},
		{name: "day too small", mutate: func(p *SchedulePeriod) { p.DayOfWeek = 0 }, wantErr: true},
		{name: "day too large", mutate: func(p *SchedulePeriod) { p.DayOfWeek = 8 }, wantErr: true},
		{name: "hour out of range", mutate: func(p *SchedulePeriod) { p.OpenHour = 24 }, wantErr: true},
		{name: "minute out of range", mutate: func(p *SchedulePeriod) { p.CloseMinute = 60 }, wantErr: true},
		{name: "overnight window allowed", mutate: func(p *SchedulePeriod) {
			p.OpenHour, p.CloseHour = 22, 2
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMinuteOfDay(t *testing.T) {
	p := SchedulePeriod{OpenHour: 9, OpenMinute: 30, CloseHour: 18, CloseMinute: 5}
	if got := p.OpenMinuteOfDay(); got != 570 {
		t.Errorf("OpenMinuteOfDay = %d, want 570", got)
	}
	if got := p.CloseMinuteOfDay(); got != 1085 {
		t.Errorf("CloseMinuteOfDay = %d, want 1085", got)
	}
	if got := p.OpenLabel(); got != "09:30" {
		t.Errorf("OpenLabel = %q, want 09:30", got)
	}
}

func TestDaySet(t *testing.T) {
	s := NewDaySet(1, 2, 3, 4, 5)
	for d := 1; d <= 5; d++ {
		if !s.Contains(d) {
			t.Errorf("day %d should be in set", d)
		}
	}
	if s.Contains(6) || s.Contains(7) {
		t.Errorf("weekend should not be in set")
	}
	if s.Contains(0) || s.Contains(8) {
		t.Errorf("out-of-range days must never match")
	}
}

func TestParseLegacyDays(t *testing.T) {
	tests := []struct {
		raw  string
		want []int
	}{
		{"1,2,3,4,5,6,7", []int{1, 2, 3, 4, 5, 6, 7}},
		{"1, 3 ,5", []int{1, 3, 5}},
		{"", nil},
		{"7", []int{7}},
		{"2,x,9,3", []int{2, 3}},
	}

	for _, tt := range tests {
		got := ParseLegacyDays(tt.raw).Days()
		if len(got) != len(tt.want) {
			t.Errorf("ParseLegacyDays(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseLegacyDays(%q) = %v, want %v", tt.raw, got, tt.want)
				break
			}
		}
	}
}

func TestDaySetLegacyRoundTrip(t *testing.T) {
	s := NewDaySet(1, 5, 7)
	if got := s.LegacyString(); got != "1,5,7" {
		t.Errorf("LegacyString = %q, want 1,5,7", got)
	}
	if ParseLegacyDays(s.LegacyString()) != s {
		t.Errorf("legacy round trip lost days")
	}
}
