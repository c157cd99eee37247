package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLocationFallback(t *testing.T) {
	t.Cleanup(func() { SetLocation("UTC") })

	loc := SetLocation("Not/AZone")
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 3600, offset)
}

func TestParseDateLayouts(t *testing.T) {
	SetLocation("UTC")

	iso, err := ParseDate("2024-03-09")
	require.NoError(t, err)
	display, err := ParseDate("09/03/2024")
	require.NoError(t, err)

	assert.True(t, iso.Equal(display))
	assert.Equal(t, time.March, iso.Month())

	_, err = ParseDate("March 9th")
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	SetLocation("UTC")
	ts := time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, "17/05/2024 23:59", Format(EndOfDay(ts), DisplayDateTimeLayout))
}
