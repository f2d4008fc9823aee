package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression(t *testing.T) {
	ce, err := ParseCronExpression("*/15 * * * *")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 15, 30, 45}, ce.minutes)

	ce, err = ParseCronExpression("0 9-11 * * *")
	require.NoError(t, err)
	assert.Equal(t, []int{9, 10, 11}, ce.hours)

	ce, err = ParseCronExpression("0 0 1,15 * *")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 15}, ce.days)
}

func TestParseCronExpression_Invalid(t *testing.T) {
	_, err := ParseCronExpression("* * * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("61 * * * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("*/x * * * *")
	assert.Error(t, err)
}

func TestCronExpression_Next(t *testing.T) {
	ce := MustParseCronExpression(EveryDayMidnight)

	after := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), ce.Next(after))

	ce = MustParseCronExpression(Every5Minutes)
	after = time.Date(2026, 3, 1, 12, 2, 10, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC), ce.Next(after))
}

func TestCronExpression_NextWeekday(t *testing.T) {
	ce := MustParseCronExpression(EverySunday)

	// March 1 2026 is a Sunday; from midday the next match is March 8.
	after := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Sunday, next.Weekday())
}

func TestCronExpression_String(t *testing.T) {
	assert.Equal(t, "0 * * * *", MustParseCronExpression(EveryHour).String())
}
