// Package app wires configuration, logging, the fetcher, the notifiers and
// the polling controller into the run, serve and preview entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"drawwatch/internal/clock"
	"drawwatch/internal/config"
	"drawwatch/internal/lottery"
	"drawwatch/internal/poller"
	"drawwatch/internal/render"
	"drawwatch/internal/schedule"
	logx "drawwatch/pkg/logx"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned by RunOnce while another run holds the app.
var ErrRunInProgress = errors.New("a polling run is already in progress")

type App struct {
	cfgm *config.Manager

	// runMu serializes runs across schedule instances.
	runMu sync.Mutex

	logs *logx.Service
	log  logx.Logger

	clock clock.Clock

	// Overrides used in place of the configured HTTP and SMTP clients.
	fetcher    poller.Fetcher
	dispatcher poller.Dispatcher
}

type Option func(*App)

func WithClock(clk clock.Clock) Option { return func(a *App) { a.clock = clk } }

func WithFetcher(f poller.Fetcher) Option { return func(a *App) { a.fetcher = f } }

func WithDispatcher(d poller.Dispatcher) Option { return func(a *App) { a.dispatcher = d } }

// New loads and validates the config and sets up logging.
func New(cfgm *config.Manager, opts ...Option) (*App, error) {
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &App{cfgm: cfgm, clock: clock.Real{}}
	for _, o := range opts {
		o(a)
	}
	a.logs, _ = logx.New(mapLogConfig(cfg))
	a.log = a.logs.Logger().With(logx.String("comp", "app"))
	cfgm.SetLogger(a.logs.Logger().With(logx.String("comp", "config")))
	return a, nil
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Config() *config.Config { return a.cfgm.Get() }

func (a *App) Close() error {
	if a.logs == nil {
		return nil
	}
	return a.logs.Close()
}

// RunOnce performs one polling run against the current config.
func (a *App) RunOnce(ctx context.Context) (poller.Report, error) {
	if !a.runMu.TryLock() {
		return poller.Report{}, ErrRunInProgress
	}
	defer a.runMu.Unlock()

	cfg := a.cfgm.Get()
	log := a.logs.Logger().With(logx.String("comp", "poller"), logx.String("run_id", uuid.NewString()))

	pcfg, err := mapPollerConfig(cfg)
	if err != nil {
		return poller.Report{}, err
	}
	fetcher := a.fetcher
	if fetcher == nil {
		f, err := newFetcher(cfg)
		if err != nil {
			return poller.Report{}, err
		}
		log.Debug("fetcher ready", logx.String("endpoint", f.Endpoint()))
		fetcher = f
	}
	dispatcher := a.dispatcher
	if dispatcher == nil {
		d, err := newDispatcher(cfg, log)
		if err != nil {
			return poller.Report{}, err
		}
		dispatcher = d
	}

	ctrl, err := poller.New(pcfg, fetcher, dispatcher, a.clock, log)
	if err != nil {
		return poller.Report{}, err
	}
	rep, err := ctrl.Run(ctx)
	log.Info("run finished",
		logx.String("state", rep.State.String()),
		logx.Int("attempts", rep.Attempts()),
		logx.Duration("took", rep.Finished.Sub(rep.Started)),
	)
	return rep, err
}

// Serve triggers RunOnce on the configured schedule until ctx ends. Config
// file changes apply to the next run; schedule and timezone changes
// re-register the trigger.
func (a *App) Serve(ctx context.Context) error {
	sub := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.cfgm.Watch(ctx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	cfg := a.cfgm.Get()
	sched, err := a.startSchedule(ctx, cfg)
	if err != nil {
		return err
	}
	a.log.Info("serving", logx.String("schedule", cfg.Schedule), logx.String("timezone", cfg.Timezone))

	for {
		select {
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			sched.Stop(stopCtx)
			cancel()
			a.log.Info("stopped")
			return nil
		case newCfg, ok := <-sub:
			if !ok {
				return nil
			}
			a.logs.Apply(mapLogConfig(newCfg))
			if newCfg.Schedule == cfg.Schedule && newCfg.Timezone == cfg.Timezone {
				cfg = newCfg
				continue
			}
			next, err := a.startSchedule(ctx, newCfg)
			if err != nil {
				a.log.Error("schedule change rejected; keeping previous trigger", logx.Err(err))
				continue
			}
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			sched.Stop(stopCtx)
			cancel()
			sched, cfg = next, newCfg
		}
	}
}

func (a *App) startSchedule(ctx context.Context, cfg *config.Config) (*schedule.Service, error) {
	spec, err := schedule.ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	s := schedule.New(spec, loc, a.logs.Logger().With(logx.String("comp", "schedule")))
	err = s.Start(ctx, func(ctx context.Context) {
		_, err := a.RunOnce(ctx)
		switch {
		case errors.Is(err, ErrRunInProgress):
			a.log.Warn("previous run still in progress; skipping trigger")
		case err != nil:
			a.log.Warn("scheduled run ended without notification", logx.Err(err))
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Preview renders the current draw to w without sending anything. With a
// non-empty file the draw is read from a saved API response instead of the
// network.
func (a *App) Preview(ctx context.Context, file string, asHTML bool, w io.Writer) error {
	var (
		d   lottery.Draw
		err error
	)
	if strings.TrimSpace(file) != "" {
		b, rerr := os.ReadFile(file)
		if rerr != nil {
			return rerr
		}
		d, err = lottery.DecodeResponse(b)
	} else {
		fetcher := a.fetcher
		if fetcher == nil {
			f, ferr := newFetcher(a.cfgm.Get())
			if ferr != nil {
				return ferr
			}
			fetcher = f
		}
		d, err = fetcher.Fetch(ctx)
	}
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		a.log.Warn("draw fields inconsistent", logx.Err(err))
	}

	loc, err := a.cfgm.Get().Location()
	if err != nil {
		return err
	}
	now := a.clock.Now().In(loc)
	if !lottery.IsToday(d, now) {
		a.log.Info("draw is not dated today", logx.String("open_time", d.OpenTime))
	}

	out := render.Text(d, now)
	if asHTML {
		if out, err = render.HTML(d, now); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
