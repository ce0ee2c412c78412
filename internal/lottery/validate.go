package lottery

import (
	"strings"
	"time"
)

// IsToday reports whether d was opened on ref's calendar date. OpenTime is
// interpreted in ref's location. Unparseable times are never today.
func IsToday(d Draw, ref time.Time) bool {
	t, ok := d.OpenedAt(ref.Location())
	if !ok {
		return false
	}
	ry, rm, rd := ref.Date()
	y, m, day := t.Date()
	return y == ry && m == rm && day == rd
}

// OpenedAt parses OpenTime in loc.
func (d Draw) OpenedAt(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(OpenTimeLayout, strings.TrimSpace(d.OpenTime), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
