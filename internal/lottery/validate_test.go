package lottery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsToday(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	ref := time.Date(2024, 5, 1, 21, 33, 0, 0, loc)

	assert.True(t, IsToday(Draw{OpenTime: "2024-05-01 21:32:30"}, ref))
	assert.True(t, IsToday(Draw{OpenTime: "2024-05-01 00:00:00"}, ref))
	assert.False(t, IsToday(Draw{OpenTime: "2024-04-30 21:32:30"}, ref))
	assert.False(t, IsToday(Draw{OpenTime: "2024-05-02 00:00:01"}, ref))
}

func TestIsTodayMalformed(t *testing.T) {
	ref := time.Date(2024, 5, 1, 21, 33, 0, 0, time.UTC)
	for _, raw := range []string{"", "yesterday", "2024/05/01 21:32:30", "2024-05-01", "2024-13-01 00:00:00"} {
		assert.False(t, IsToday(Draw{OpenTime: raw}, ref), raw)
	}
}

func TestIsTodayUsesReferenceLocation(t *testing.T) {
	// 23:30 in Shanghai on May 1st is still May 1st there, even though the
	// same instant is May 1st 15:30 UTC.
	loc := time.FixedZone("CST", 8*3600)
	ref := time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC).In(loc)
	assert.True(t, IsToday(Draw{OpenTime: "2024-05-01 23:30:00"}, ref))

	refNextDay := time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC).In(loc)
	assert.False(t, IsToday(Draw{OpenTime: "2024-05-01 23:30:00"}, refNextDay))
}
