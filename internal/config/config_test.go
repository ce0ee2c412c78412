package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

var credsEnv = map[string]string{
	EnvDingtalkWebhook: "https://oapi.dingtalk.com/robot/send?access_token=x",
	EnvEmailUser:       "bot@example.com",
	EnvEmailPassword:   "secret",
	EnvEmailTo:         "me@example.com",
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestEnvOnlyDefaults(t *testing.T) {
	m := NewManager("")
	m.SetLookup(envMap(credsEnv))

	cfg, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
	assert.Equal(t, DefaultEndpoint, cfg.Lottery.Endpoint)
	assert.Equal(t, 1, cfg.Polling.Phase1.Attempts(0))
	assert.Equal(t, 21, cfg.Polling.Phase2.Attempts(0))
	assert.Equal(t, "21:31:30", cfg.Polling.DenseStart)
	assert.Equal(t, "21:35:00", cfg.Polling.Deadline)
	assert.Equal(t, "smtp.qq.com", cfg.Email.Host)
	assert.Equal(t, 587, cfg.Email.Port)
	assert.Equal(t, "starttls", cfg.Email.Mode)
	assert.Equal(t, "bot@example.com", cfg.Email.From)
	assert.Equal(t, 5, cfg.Email.MaxAttempts)
	assert.Equal(t, "3s", cfg.Email.RetryDelay)
	assert.True(t, Enabled(cfg.Logging.Console))
	assert.Same(t, cfg, m.Get())
}

func TestYAMLFileWithEnvOverride(t *testing.T) {
	p := writeFile(t, "drawwatch.yaml", `
timezone: Asia/Hong_Kong
polling:
  phase1:
    max_attempts: 0
  phase2:
    max_attempts: 5
    interval: 20s
email:
  mode: tls
  to: file@example.com
`)
	env := map[string]string{}
	for k, v := range credsEnv {
		env[k] = v
	}
	env[EnvTimezone] = "Asia/Shanghai"

	m := NewManager(p)
	m.SetLookup(envMap(env))
	cfg, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
	assert.Equal(t, 0, cfg.Polling.Phase1.Attempts(1))
	assert.Equal(t, 5, cfg.Polling.Phase2.Attempts(0))
	assert.Equal(t, "20s", cfg.Polling.Phase2.Interval)
	assert.Equal(t, 465, cfg.Email.Port)
	// env wins over file
	assert.Equal(t, "me@example.com", cfg.Email.To)
}

func TestTOMLFile(t *testing.T) {
	p := writeFile(t, "drawwatch.toml", `
schedule = "interval:1h"

[lottery]
endpoint = "http://localhost:8080/latest"
rate_per_sec = 2.5

[dingtalk]
enabled = false

[email]
enabled = false
`)
	m := NewManager(p)
	m.SetLookup(envMap(nil))
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "interval:1h", cfg.Schedule)
	assert.Equal(t, "http://localhost:8080/latest", cfg.Lottery.Endpoint)
	assert.InDelta(t, 2.5, cfg.Lottery.RatePerSec, 1e-9)
	assert.False(t, Enabled(cfg.Dingtalk.Enabled))
}

func TestJSONRejectsUnknownAndTrailing(t *testing.T) {
	m := NewManager(writeFile(t, "c.json", `{"nope": 1}`))
	m.SetLookup(envMap(credsEnv))
	_, err := m.Load()
	assert.ErrorContains(t, err, "unknown field")

	m = NewManager(writeFile(t, "c.json", `{} {}`))
	m.SetLookup(envMap(credsEnv))
	_, err = m.Load()
	assert.ErrorContains(t, err, "trailing data")
}

func TestMissingCredentialsFailValidation(t *testing.T) {
	m := NewManager("")
	m.SetLookup(envMap(nil))
	_, err := m.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dingtalk.webhook")
	assert.Contains(t, err.Error(), "email.username")
	assert.Nil(t, m.Get())
}

func TestValidateTiming(t *testing.T) {
	cfg := &Config{Polling: PollingConfig{DenseStart: "21:40", Deadline: "21:35"}}
	cfg.Dingtalk.Enabled = new(bool)
	cfg.Email.Enabled = new(bool)
	ApplyDefaults(cfg)
	err := Validate(cfg)
	assert.ErrorContains(t, err, "must be before")

	cfg.Polling.DenseStart = "25:00"
	assert.ErrorContains(t, Validate(cfg), "polling.dense_start")

	cfg.Polling.DenseStart = "21:30"
	cfg.Polling.Phase2.Interval = "soon"
	assert.ErrorContains(t, Validate(cfg), "polling.phase2.interval")
}

func TestBadEnvPort(t *testing.T) {
	cfg := &Config{}
	err := ApplyEnv(cfg, envMap(map[string]string{EnvEmailPort: "abc"}))
	assert.ErrorContains(t, err, EnvEmailPort)

	require.NoError(t, ApplyEnv(cfg, envMap(map[string]string{EnvEmailPort: "2525"})))
	assert.Equal(t, 2525, cfg.Email.Port)
}

func TestLoadDotEnv(t *testing.T) {
	p := writeFile(t, "test.env", "DRAWWATCH_TEST_DOTENV=from-file\n")
	t.Setenv("DRAWWATCH_TEST_DOTENV", "")
	os.Unsetenv("DRAWWATCH_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(p))
	assert.Equal(t, "from-file", os.Getenv("DRAWWATCH_TEST_DOTENV"))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestSummarizeChangeHidesSecrets(t *testing.T) {
	a := &Config{}
	b := &Config{}
	b.Email.Password = "hunter2"
	b.Polling.Deadline = "21:40:00"

	sections, attrs := SummarizeChange(a, b)
	assert.Equal(t, []string{"polling", "email"}, sections)
	assert.NotEmpty(t, attrs)

	sections, _ = SummarizeChange(b, b)
	assert.Empty(t, sections)
}

func TestWatchPublishesReload(t *testing.T) {
	p := writeFile(t, "drawwatch.yaml", "schedule: \"10 21 * * *\"\n")
	m := NewManager(p)
	m.SetLookup(envMap(credsEnv))
	m.debounce = 10 * time.Millisecond
	_, err := m.Load()
	require.NoError(t, err)

	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()

	// Give the watcher time to register, then rewrite until the event lands.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-sub:
			assert.Equal(t, "20 21 * * *", cfg.Schedule)
			assert.Equal(t, "20 21 * * *", m.Get().Schedule)
			cancel()
			<-done
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(p, []byte("schedule: \"20 21 * * *\"\n"), 0o600))
		case <-deadline:
			t.Fatal("no reload published")
		}
	}
}

func TestWatchIgnoresInvalidReload(t *testing.T) {
	p := writeFile(t, "drawwatch.json", `{"schedule": "10 21 * * *"}`)
	m := NewManager(p)
	m.SetLookup(envMap(credsEnv))
	_, err := m.Load()
	require.NoError(t, err)

	sub := m.Subscribe(1)
	require.NoError(t, os.WriteFile(p, []byte(`{"schedule": "not a cron"}`), 0o600))
	m.reload()
	select {
	case <-sub:
		t.Fatal("invalid config published")
	default:
	}
	assert.Equal(t, "10 21 * * *", m.Get().Schedule)
}
