package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	at := time.Date(2025, 6, 15, 1, 30, 0, 0, loc) // 2025-06-14 22:30 UTC

	from, to := dayBounds(at)
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, time.UTC, from.Location())
}

func TestDayBoundsMidnightStaysOnDay(t *testing.T) {
	at := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	from, to := dayBounds(at)
	assert.Equal(t, at, from)
	assert.Equal(t, at.AddDate(0, 0, 1), to)
}
