// Package poller runs the two-phase polling schedule that finds the day's
// draw and hands it to the notifiers exactly once.
//
// The early phase starts as soon as the run starts and accepts the first
// result it gets, so a draw published ahead of time is still announced. If
// it finds nothing, the controller waits for the dense window and polls at a
// short interval until a draw dated today appears, the attempt budget runs
// out, or the deadline passes.
package poller

import (
	"context"
	"fmt"
	"html"
	"time"

	"drawwatch/internal/clock"
	"drawwatch/internal/lottery"
	"drawwatch/internal/render"
	logx "drawwatch/pkg/logx"
)

type Controller struct {
	cfg      Config
	fetcher  Fetcher
	dispatch Dispatcher
	clock    clock.Clock
	log      logx.Logger
}

func New(cfg Config, fetcher Fetcher, dispatch Dispatcher, clk clock.Clock, log logx.Logger) (*Controller, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if fetcher == nil || dispatch == nil {
		return nil, fmt.Errorf("poller: fetcher and dispatcher are required")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Controller{cfg: cfg, fetcher: fetcher, dispatch: dispatch, clock: clk, log: log}, nil
}

func (c *Controller) now() time.Time { return c.clock.Now().In(c.cfg.Location) }

// Run executes one polling run. It returns nil after a dispatch,
// ErrNoQualifyingDraw when both phases are exhausted, or the context error
// if ctx ends while waiting.
func (c *Controller) Run(ctx context.Context) (Report, error) {
	start := c.now()
	rep := Report{State: StateFailed, Started: start}
	denseStart := c.cfg.DenseStart.On(start)
	deadline := c.cfg.Deadline.On(start)

	c.log.Info("polling started",
		logx.Time("dense_start", denseStart),
		logx.Time("deadline", deadline),
		logx.Int("early_max", c.cfg.Early.MaxAttempts),
		logx.Int("dense_max", c.cfg.Dense.MaxAttempts),
	)

	// Early phase.
	early := c.log.With(logx.String("phase", PhaseEarly))
	for attempt := 1; attempt <= c.cfg.Early.MaxAttempts; attempt++ {
		if !c.now().Before(denseStart) {
			early.Info("dense window already open; leaving early phase", logx.Int("attempt", attempt))
			break
		}
		rep.EarlyAttempts++
		d, ok := c.poll(ctx, early, attempt, c.cfg.Early.MaxAttempts, c.cfg.EarlyRequireToday)
		if ok {
			if !lottery.IsToday(d, c.now()) {
				early.Warn("accepting draw not dated today",
					logx.String("open_time", d.OpenTime),
					logx.String("expect", d.Expect),
				)
			}
			return c.finish(ctx, rep, PhaseEarly, d)
		}
		if attempt < c.cfg.Early.MaxAttempts {
			if err := c.clock.Sleep(ctx, c.cfg.Early.Interval); err != nil {
				return c.abort(rep, err)
			}
		}
	}

	// Gap until the dense window.
	if now := c.now(); now.Before(denseStart) {
		wait := denseStart.Sub(now)
		c.log.Info("waiting for dense window", logx.Duration("wait", wait), logx.Time("until", denseStart))
		if err := c.clock.Sleep(ctx, wait); err != nil {
			return c.abort(rep, err)
		}
	}

	// Dense phase.
	dense := c.log.With(logx.String("phase", PhaseDense))
	for attempt := 1; attempt <= c.cfg.Dense.MaxAttempts; attempt++ {
		if !c.now().Before(deadline) {
			dense.Warn("deadline reached", logx.Int("attempt", attempt), logx.Time("deadline", deadline))
			break
		}
		rep.DenseAttempts++
		if d, ok := c.poll(ctx, dense, attempt, c.cfg.Dense.MaxAttempts, true); ok {
			return c.finish(ctx, rep, PhaseDense, d)
		}
		if attempt < c.cfg.Dense.MaxAttempts {
			if err := c.clock.Sleep(ctx, c.cfg.Dense.Interval); err != nil {
				return c.abort(rep, err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return c.abort(rep, err)
	}
	rep.Finished = c.now()
	c.log.Error("no qualifying draw found",
		logx.Int("early_attempts", rep.EarlyAttempts),
		logx.Int("dense_attempts", rep.DenseAttempts),
	)
	return rep, ErrNoQualifyingDraw
}

// poll makes one fetch and reports whether the result qualifies.
func (c *Controller) poll(ctx context.Context, log logx.Logger, attempt, maxAttempts int, requireToday bool) (lottery.Draw, bool) {
	log = log.With(logx.Int("attempt", attempt), logx.Int("max", maxAttempts))

	d, err := c.fetcher.Fetch(ctx)
	if err != nil {
		log.Warn("no result", logx.Err(err))
		return lottery.Draw{}, false
	}
	if requireToday && !lottery.IsToday(d, c.now()) {
		log.Info("result is not today's draw",
			logx.String("open_time", d.OpenTime),
			logx.String("expect", d.Expect),
		)
		return lottery.Draw{}, false
	}
	log.Info("draw found", logx.String("open_time", d.OpenTime), logx.String("expect", d.Expect), logx.String("open_code", d.OpenCode))
	return d, true
}

func (c *Controller) finish(ctx context.Context, rep Report, phase string, d lottery.Draw) (Report, error) {
	if err := d.Validate(); err != nil {
		c.log.Warn("draw fields inconsistent; rendering aligned prefix", logx.Err(err))
	}

	at := c.now()
	msg, err := render.Render(d, at)
	if err != nil {
		c.log.Error("email body render failed; sending text body", logx.Err(err))
		text := render.Text(d, at)
		msg = render.Message{Subject: d.OpenCode, Text: text, HTML: "<pre>" + html.EscapeString(text) + "</pre>"}
	}

	rep.State = StateDispatched
	rep.AcceptedIn = phase
	rep.Draw = d
	rep.NotifiedAt = at
	rep.Deliveries = c.dispatch.Dispatch(ctx, msg)
	rep.Finished = c.now()

	c.log.Info("notifications dispatched", logx.String("phase", phase), logx.String("expect", d.Expect), logx.Int("attempts", rep.Attempts()))
	return rep, nil
}

func (c *Controller) abort(rep Report, err error) (Report, error) {
	rep.Finished = c.now()
	c.log.Warn("polling interrupted", logx.Err(err))
	return rep, err
}
