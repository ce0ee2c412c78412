package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	logx "drawwatch/pkg/logx"

	"github.com/robfig/cron/v3"
)

// Job is one triggered unit of work.
type Job func(ctx context.Context)

// Service fires a single job on a schedule. Overlapping triggers are skipped
// while the previous run is still in progress.
type Service struct {
	mu sync.Mutex

	log  logx.Logger
	spec ParsedSpec
	loc  *time.Location

	c *cron.Cron
}

func New(spec ParsedSpec, loc *time.Location, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{spec: spec, loc: loc, log: log}
}

// Start registers job and starts the cron loop. The job receives ctx.
func (s *Service) Start(ctx context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	cl := cronLogger{log: s.log}
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(s.loc),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(s.spec.CronExpr(), func() { job(ctx) })
	if err != nil {
		return fmt.Errorf("register schedule %q: %w", s.spec.CronExpr(), err)
	}
	s.c = c
	c.Start()

	if next, err := Next(s.spec, time.Now(), s.loc); err == nil {
		s.log.Info("schedule started", logx.String("spec", s.spec.CronExpr()), logx.String("tz", s.loc.String()), logx.Time("next", next))
	}
	return nil
}

// Stop stops triggering and waits for a running job to return or ctx to end.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		out = append(out, logx.Any(k, kv[i+1]))
	}
	return out
}
