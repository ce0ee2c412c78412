package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"drawwatch/internal/schedule"
)

// Validate reports every problem in a defaulted config, joined into one
// error.
func Validate(c *Config) error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	_, err := c.Location()
	add(err)
	if _, err := schedule.ParseSchedule(c.Schedule); err != nil {
		add(fmt.Errorf("schedule: %w", err))
	}

	if u, err := url.Parse(c.Lottery.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add(fmt.Errorf("lottery.endpoint: invalid URL %q", c.Lottery.Endpoint))
	}
	_, err = ParseDurationField("lottery.timeout", c.Lottery.Timeout)
	add(err)
	if c.Lottery.RatePerSec < 0 {
		add(fmt.Errorf("lottery.rate_per_sec must be >= 0"))
	}

	p := c.Polling
	if p.Phase1.Attempts(0) < 0 {
		add(fmt.Errorf("polling.phase1.max_attempts must be >= 0"))
	}
	if p.Phase2.Attempts(0) < 0 {
		add(fmt.Errorf("polling.phase2.max_attempts must be >= 0"))
	}
	_, err = ParseDurationField("polling.phase1.interval", p.Phase1.Interval)
	add(err)
	_, err = ParseDurationField("polling.phase2.interval", p.Phase2.Interval)
	add(err)
	start, errStart := ParseClockField("polling.dense_start", p.DenseStart)
	add(errStart)
	end, errEnd := ParseClockField("polling.deadline", p.Deadline)
	add(errEnd)
	if errStart == nil && errEnd == nil && !start.Before(end) {
		add(fmt.Errorf("polling.dense_start %s must be before polling.deadline %s", start, end))
	}

	if Enabled(c.Dingtalk.Enabled) {
		if strings.TrimSpace(c.Dingtalk.Webhook) == "" {
			add(fmt.Errorf("dingtalk.webhook is required (or set %s, or dingtalk.enabled: false)", EnvDingtalkWebhook))
		}
		_, err = ParseDurationField("dingtalk.timeout", c.Dingtalk.Timeout)
		add(err)
	}

	if e := c.Email; Enabled(e.Enabled) {
		if strings.TrimSpace(e.Username) == "" || e.Password == "" {
			add(fmt.Errorf("email.username and email.password are required (or set %s/%s, or email.enabled: false)", EnvEmailUser, EnvEmailPassword))
		}
		if _, err := mail.ParseAddress(e.To); err != nil {
			add(fmt.Errorf("email.to: invalid address %q", e.To))
		}
		if e.From != "" {
			if _, err := mail.ParseAddress(e.From); err != nil {
				add(fmt.Errorf("email.from: invalid address %q", e.From))
			}
		}
		if e.Mode != "starttls" && e.Mode != "explicit" && !implicitTLS(e.Mode) {
			add(fmt.Errorf("email.mode: must be starttls or tls, got %q", e.Mode))
		}
		if e.Port <= 0 || e.Port > 65535 {
			add(fmt.Errorf("email.port: out of range: %d", e.Port))
		}
		if e.MaxAttempts < 1 {
			add(fmt.Errorf("email.max_attempts must be >= 1"))
		}
		_, err = ParseDurationField("email.timeout", e.Timeout)
		add(err)
		_, err = ParseDurationField("email.retry_delay", e.RetryDelay)
		add(err)
	}

	return errors.Join(errs...)
}
