package lottery

import "strings"

// Wave is the colour tag of a ball.
type Wave int

const (
	WaveUnknown Wave = iota
	WaveRed
	WaveBlue
	WaveGreen
)

// ParseWave maps an upstream tag ("red", " Blue ") to a Wave.
func ParseWave(s string) Wave {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return WaveRed
	case "blue":
		return WaveBlue
	case "green":
		return WaveGreen
	default:
		return WaveUnknown
	}
}

func (w Wave) String() string {
	switch w {
	case WaveRed:
		return "red"
	case WaveBlue:
		return "blue"
	case WaveGreen:
		return "green"
	default:
		return "unknown"
	}
}

// Label is the Chinese display label. Unknown returns "".
func (w Wave) Label() string {
	switch w {
	case WaveRed:
		return "红"
	case WaveBlue:
		return "蓝"
	case WaveGreen:
		return "绿"
	default:
		return ""
	}
}

// Color is the HTML colour used for the ball background.
func (w Wave) Color() string {
	switch w {
	case WaveRed:
		return "#FF0000"
	case WaveBlue:
		return "#0000FF"
	case WaveGreen:
		return "#00FF00"
	default:
		return "#CCCCCC"
	}
}

// Label returns the display label for the ball's colour, falling back to the
// raw upstream tag for colours this package does not know.
func (b Ball) Label() string {
	if l := b.Wave.Label(); l != "" {
		return l
	}
	return b.RawWave
}
