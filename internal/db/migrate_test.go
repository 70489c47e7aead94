package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashbox/internal/model"
)

func TestExpandLegacyPeriod(t *testing.T) {
	base := model.SchedulePeriod{
		ClientID:        3,
		Name:            "morning",
		OpenHour:        9,
		CloseHour:       18,
		AutoOpenEnabled: true,
		IsActive:        true,
	}

	got := expandLegacyPeriod(base, "1, 2,7")
	require.Len(t, got, 3)
	days := make([]int, 0, len(got))
	for _, p := range got {
		days = append(days, p.DayOfWeek)
		assert.Equal(t, base.ClientID, p.ClientID)
		assert.Equal(t, base.Name, p.Name)
		assert.Equal(t, base.OpenHour, p.OpenHour)
		assert.True(t, p.AutoOpenEnabled)
	}
	assert.Equal(t, []int{1, 2, 7}, days)
}

func TestExpandLegacyPeriodBadSpecs(t *testing.T) {
	base := model.SchedulePeriod{ClientID: 1, Name: "shift"}

	assert.Empty(t, expandLegacyPeriod(base, ""), "empty spec drops the row")
	assert.Empty(t, expandLegacyPeriod(base, "mon,tue"), "unparseable fragments are skipped")
	assert.Empty(t, expandLegacyPeriod(base, "0,8,15"), "out-of-range days are ignored")

	// Duplicates collapse through the set.
	assert.Len(t, expandLegacyPeriod(base, "5,5,5"), 1)
}
