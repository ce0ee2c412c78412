package config

// Config is the on-disk configuration. Every field is optional; unset fields
// take the defaults listed on each section and environment variables override
// what the file says.
type Config struct {
	// Timezone is an IANA name. All wall-clock times below are read in it.
	// Default: Asia/Shanghai.
	Timezone string `json:"timezone,omitempty"`

	// Schedule triggers runs in serve mode. Cron syntax (5 or 6 fields,
	// descriptors) or "interval:<duration>". Default: "10 21 * * *".
	Schedule string `json:"schedule,omitempty"`

	Lottery  LotteryConfig  `json:"lottery"`
	Polling  PollingConfig  `json:"polling"`
	Dingtalk DingtalkConfig `json:"dingtalk"`
	Email    EmailConfig    `json:"email"`
	Logging  LoggingConfig  `json:"logging"`
}

// LotteryConfig controls the result fetcher.
//
// Defaults:
//   - endpoint: https://macaumarksix.com/api/macaujc2.com
//   - timeout: "10s"
//   - rate_per_sec: 0 (disabled)
type LotteryConfig struct {
	Endpoint   string  `json:"endpoint,omitempty"`
	Timeout    string  `json:"timeout,omitempty"`
	UserAgent  string  `json:"user_agent,omitempty"`
	RatePerSec float64 `json:"rate_per_sec,omitempty"`
}

// PollingConfig is the two-phase timing.
//
// Defaults:
//   - phase1: 1 attempt, "30s"
//   - dense_start: "21:31:30"
//   - phase2: 21 attempts, "10s"
//   - deadline: "21:35:00"
type PollingConfig struct {
	Phase1 PhaseConfig `json:"phase1"`
	// Phase1RequireToday applies the date check to phase 1 as well.
	Phase1RequireToday bool `json:"phase1_require_today,omitempty"`

	DenseStart string      `json:"dense_start,omitempty"`
	Phase2     PhaseConfig `json:"phase2"`
	Deadline   string      `json:"deadline,omitempty"`
}

// PhaseConfig bounds one phase. MaxAttempts is a pointer so an explicit 0
// (skip the phase) is distinguishable from "omitted".
type PhaseConfig struct {
	MaxAttempts *int   `json:"max_attempts,omitempty"`
	Interval    string `json:"interval,omitempty"`
}

// DingtalkConfig configures the chat webhook. Enabled defaults to true; an
// enabled channel without a webhook fails validation.
type DingtalkConfig struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Webhook string `json:"webhook,omitempty"`
	Secret  string `json:"secret,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// EmailConfig configures SMTP delivery.
//
// Defaults:
//   - host: smtp.qq.com
//   - mode: "starttls" (port 587); "tls" uses port 465
//   - from: username
//   - timeout: "20s"
//   - max_attempts: 5, retry_delay: "3s"
type EmailConfig struct {
	Enabled     *bool  `json:"enabled,omitempty"`
	Host        string `json:"host,omitempty"`
	Port        int    `json:"port,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Timeout     string `json:"timeout,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
	RetryDelay  string `json:"retry_delay,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level,omitempty"`
	Console *bool             `json:"console,omitempty"`
	File    LoggingFileConfig `json:"file"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Enabled reports whether a channel flag is on. Nil means on.
func Enabled(b *bool) bool { return b == nil || *b }

// Attempts returns the configured attempt count or def when omitted.
func (p PhaseConfig) Attempts(def int) int {
	if p.MaxAttempts == nil {
		return def
	}
	return *p.MaxAttempts
}
