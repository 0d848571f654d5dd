package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayOfWeek(t *testing.T) {
	for day := 0; day < DaysPerWeek; day++ {
		d, err := ParseDayOfWeek(day)
		require.NoError(t, err)
		assert.Equal(t, DayOfWeek(day), d)
	}

	for _, day := range []int{-1, 7, 42} {
		_, err := ParseDayOfWeek(day)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "day %d", day)
		assert.Equal(t, "dayOfWeek", ve.Field)
	}
}

func TestDayOfWeekString(t *testing.T) {
	assert.Equal(t, "Sunday", Sunday.String())
	assert.Equal(t, "Monday", Monday.String())
	assert.Equal(t, "Saturday", Saturday.String())
	assert.Equal(t, "DayOfWeek(9)", DayOfWeek(9).String())
}

func TestWeekScheduleRestDays(t *testing.T) {
	var week WeekSchedule
	push := &Routine{Name: "Push"}
	week[Monday] = push

	assert.Same(t, push, week.Day(Monday))
	assert.False(t, week.IsRestDay(Monday))
	assert.True(t, week.IsRestDay(Sunday))
	assert.Nil(t, week.Day(DayOfWeek(8)))
}
