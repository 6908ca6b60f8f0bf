package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 14, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	a := Span(at(14, 0), 60)

	assert.True(t, a.Overlaps(Span(at(14, 30), 60)), "partial overlap")
	assert.True(t, a.Overlaps(Span(at(13, 30), 60)), "overlap from before")
	assert.True(t, a.Overlaps(Span(at(14, 15), 15)), "contained window")
	assert.True(t, a.Overlaps(Span(at(13, 0), 180)), "containing window")

	assert.False(t, a.Overlaps(Span(at(15, 0), 60)), "touching windows do not overlap")
	assert.False(t, a.Overlaps(Span(at(13, 0), 60)), "touching from before")
	assert.False(t, a.Overlaps(Span(at(16, 0), 30)), "disjoint")
	assert.False(t, a.Overlaps(Span(at(14, 30), 0)), "zero-length window")
}

func TestContains(t *testing.T) {
	iv := Span(at(14, 0), 60)

	assert.True(t, iv.Contains(at(14, 0)), "start is inside")
	assert.True(t, iv.Contains(at(14, 59)))
	assert.False(t, iv.Contains(at(15, 0)), "end is outside")
	assert.False(t, iv.Contains(at(13, 59)))
}

func TestRemainingMinutes(t *testing.T) {
	iv := Span(at(14, 0), 60)

	assert.Equal(t, 60, RemainingMinutes(iv, at(14, 0)))
	assert.Equal(t, 30, RemainingMinutes(iv, at(14, 30)))
	assert.Equal(t, 0, RemainingMinutes(iv, at(15, 0)))
	assert.Equal(t, -30, RemainingMinutes(iv, at(15, 30)), "expired goes negative")

	// Partial minutes round up.
	now := at(14, 29).Add(30 * time.Second)
	assert.Equal(t, 31, RemainingMinutes(iv, now))
}
