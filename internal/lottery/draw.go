// Package lottery models a published draw and fetches it from the upstream
// result API.
package lottery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OpenTimeLayout is the layout of Draw.OpenTime as served upstream.
const OpenTimeLayout = "2006-01-02 15:04:05"

// Draw is one published result. OpenCode, Zodiac and Wave are comma
// separated and positionally aligned (one element per ball).
type Draw struct {
	OpenCode string `json:"openCode"`
	Zodiac   string `json:"zodiac"`
	Wave     string `json:"wave"`
	OpenTime string `json:"openTime"`
	Expect   string `json:"expect"`
}

// Ball is one drawn number with its attributes.
type Ball struct {
	Number string
	Zodiac string
	Wave   Wave
	// RawWave is the tag as received, kept for display of unknown colours.
	RawWave string
}

// Balls zips the three sequences. If their lengths differ the shortest wins;
// Validate reports the mismatch.
func (d Draw) Balls() []Ball {
	nums := splitList(d.OpenCode)
	zods := splitList(d.Zodiac)
	waves := splitList(d.Wave)

	n := min(len(nums), len(zods), len(waves))
	out := make([]Ball, n)
	for i := 0; i < n; i++ {
		out[i] = Ball{Number: nums[i], Zodiac: zods[i], Wave: ParseWave(waves[i]), RawWave: waves[i]}
	}
	return out
}

// Validate checks the cardinality invariant.
func (d Draw) Validate() error {
	nums := len(splitList(d.OpenCode))
	zods := len(splitList(d.Zodiac))
	waves := len(splitList(d.Wave))
	if nums == 0 {
		return fmt.Errorf("draw %s: empty openCode", d.Expect)
	}
	if nums != zods || nums != waves {
		return fmt.Errorf("draw %s: field length mismatch (openCode=%d zodiac=%d wave=%d)", d.Expect, nums, zods, waves)
	}
	return nil
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// UnmarshalJSON accepts string or numeric scalars for every field; the
// upstream is not consistent about quoting the period number.
func (d *Draw) UnmarshalJSON(b []byte) error {
	var raw struct {
		OpenCode flexString `json:"openCode"`
		Zodiac   flexString `json:"zodiac"`
		Wave     flexString `json:"wave"`
		OpenTime flexString `json:"openTime"`
		Expect   flexString `json:"expect"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Draw{
		OpenCode: string(raw.OpenCode),
		Zodiac:   string(raw.Zodiac),
		Wave:     string(raw.Wave),
		OpenTime: string(raw.OpenTime),
		Expect:   string(raw.Expect),
	}
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}
