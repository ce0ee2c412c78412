package config

import "strings"

const (
	DefaultTimezone        = "Asia/Shanghai"
	DefaultSchedule        = "10 21 * * *"
	DefaultEndpoint        = "https://macaumarksix.com/api/macaujc2.com"
	DefaultFetchTimeout    = "10s"
	DefaultPhase1Attempts  = 1
	DefaultPhase1Interval  = "30s"
	DefaultDenseStart      = "21:31:30"
	DefaultPhase2Attempts  = 21
	DefaultPhase2Interval  = "10s"
	DefaultDeadline        = "21:35:00"
	DefaultDingtalkTimeout = "10s"
	DefaultSMTPHost        = "smtp.qq.com"
	DefaultEmailMode       = "starttls"
	DefaultEmailTimeout    = "20s"
	DefaultEmailAttempts   = 5
	DefaultEmailRetryDelay = "3s"
	DefaultLogLevel        = "info"
	DefaultLogFile         = "./drawwatch.log"
)

// ApplyDefaults fills every unset field. Explicit values are kept.
func ApplyDefaults(c *Config) {
	setStr(&c.Timezone, DefaultTimezone)
	setStr(&c.Schedule, DefaultSchedule)

	setStr(&c.Lottery.Endpoint, DefaultEndpoint)
	setStr(&c.Lottery.Timeout, DefaultFetchTimeout)

	p := &c.Polling
	setInt(&p.Phase1.MaxAttempts, DefaultPhase1Attempts)
	setStr(&p.Phase1.Interval, DefaultPhase1Interval)
	setStr(&p.DenseStart, DefaultDenseStart)
	setInt(&p.Phase2.MaxAttempts, DefaultPhase2Attempts)
	setStr(&p.Phase2.Interval, DefaultPhase2Interval)
	setStr(&p.Deadline, DefaultDeadline)

	setStr(&c.Dingtalk.Timeout, DefaultDingtalkTimeout)

	e := &c.Email
	setStr(&e.Host, DefaultSMTPHost)
	setStr(&e.Mode, DefaultEmailMode)
	e.Mode = strings.ToLower(strings.TrimSpace(e.Mode))
	if e.Port == 0 {
		if implicitTLS(e.Mode) {
			e.Port = 465
		} else {
			e.Port = 587
		}
	}
	setStr(&e.From, e.Username)
	setStr(&e.Timeout, DefaultEmailTimeout)
	if e.MaxAttempts == 0 {
		e.MaxAttempts = DefaultEmailAttempts
	}
	setStr(&e.RetryDelay, DefaultEmailRetryDelay)

	setStr(&c.Logging.Level, DefaultLogLevel)
	if c.Logging.Console == nil {
		on := true
		c.Logging.Console = &on
	}
	if c.Logging.File.Enabled {
		setStr(&c.Logging.File.Path, DefaultLogFile)
	}
}

// implicitTLS reports whether mode names TLS from the first byte.
func implicitTLS(mode string) bool {
	switch mode {
	case "tls", "ssl", "implicit":
		return true
	}
	return false
}

func setStr(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

func setInt(dst **int, def int) {
	if *dst == nil {
		v := def
		*dst = &v
	}
}
