package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawwatch/internal/lottery"
	"drawwatch/internal/notifier"
	"drawwatch/internal/render"
	"drawwatch/internal/schedule"
)

// ErrNoQualifyingDraw is returned when both phases are exhausted.
var ErrNoQualifyingDraw = errors.New("no qualifying draw within the polling windows")

// Phase bounds one polling phase.
type Phase struct {
	MaxAttempts int
	Interval    time.Duration
}

// Config is the full timing configuration of a run.
//
// DenseStart and Deadline are resolved against the calendar date the run
// started on, in Location.
type Config struct {
	Location *time.Location

	Early Phase
	// EarlyRequireToday makes the early phase apply the same date check as
	// the dense phase instead of accepting any result.
	EarlyRequireToday bool

	DenseStart schedule.TimeOfDay
	Dense      Phase
	Deadline   schedule.TimeOfDay
}

func (c Config) validate() error {
	if c.Early.MaxAttempts < 0 || c.Dense.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must be >= 0")
	}
	if c.Early.Interval < 0 || c.Dense.Interval < 0 {
		return fmt.Errorf("intervals must be >= 0")
	}
	if !c.DenseStart.Before(c.Deadline) {
		return fmt.Errorf("dense window start %s must be before deadline %s", c.DenseStart, c.Deadline)
	}
	return nil
}

// Fetcher returns the latest published draw, or an error when none is
// available right now.
type Fetcher interface {
	Fetch(ctx context.Context) (lottery.Draw, error)
}

// Dispatcher delivers a rendered draw to every channel once.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg render.Message) []notifier.Delivery
}

// State is the terminal state of a run.
type State int

const (
	StateFailed State = iota
	StateDispatched
)

func (s State) String() string {
	if s == StateDispatched {
		return "dispatched"
	}
	return "failed"
}

// Phase names used in logs and reports.
const (
	PhaseEarly = "early"
	PhaseDense = "dense"
)

// Report summarises one run.
type Report struct {
	State State

	EarlyAttempts int
	DenseAttempts int

	// Set when State is StateDispatched.
	AcceptedIn string
	Draw       lottery.Draw
	NotifiedAt time.Time
	Deliveries []notifier.Delivery

	Started  time.Time
	Finished time.Time
}

// Attempts is the total number of fetches made.
func (r Report) Attempts() int { return r.EarlyAttempts + r.DenseAttempts }
