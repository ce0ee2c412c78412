package app

import (
	"fmt"
	"time"

	"drawwatch/internal/config"
	"drawwatch/internal/lottery"
	"drawwatch/internal/notifier"
	"drawwatch/internal/notifier/dingtalk"
	"drawwatch/internal/notifier/email"
	"drawwatch/internal/poller"
	logx "drawwatch/pkg/logx"
)

// ---- Config mapping ----

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: config.Enabled(cfg.Logging.Console),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapPollerConfig(cfg *config.Config) (poller.Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return poller.Config{}, err
	}
	p := cfg.Polling
	i1, err := config.ParseDurationField("polling.phase1.interval", p.Phase1.Interval)
	if err != nil {
		return poller.Config{}, err
	}
	i2, err := config.ParseDurationField("polling.phase2.interval", p.Phase2.Interval)
	if err != nil {
		return poller.Config{}, err
	}
	start, err := config.ParseClockField("polling.dense_start", p.DenseStart)
	if err != nil {
		return poller.Config{}, err
	}
	deadline, err := config.ParseClockField("polling.deadline", p.Deadline)
	if err != nil {
		return poller.Config{}, err
	}
	return poller.Config{
		Location:          loc,
		Early:             poller.Phase{MaxAttempts: p.Phase1.Attempts(config.DefaultPhase1Attempts), Interval: i1},
		EarlyRequireToday: p.Phase1RequireToday,
		DenseStart:        start,
		Dense:             poller.Phase{MaxAttempts: p.Phase2.Attempts(config.DefaultPhase2Attempts), Interval: i2},
		Deadline:          deadline,
	}, nil
}

func newFetcher(cfg *config.Config) (*lottery.Fetcher, error) {
	timeout, err := config.ParseDurationOrDefault("lottery.timeout", cfg.Lottery.Timeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	return lottery.NewFetcher(lottery.FetcherConfig{
		Endpoint:   cfg.Lottery.Endpoint,
		Timeout:    timeout,
		UserAgent:  cfg.Lottery.UserAgent,
		RatePerSec: cfg.Lottery.RatePerSec,
	}), nil
}

// newDispatcher builds the channel senders. A disabled channel is passed as
// an untyped nil so the dispatcher reports it as skipped.
func newDispatcher(cfg *config.Config, log logx.Logger) (*notifier.Dispatcher, error) {
	var chat notifier.ChatSender
	if config.Enabled(cfg.Dingtalk.Enabled) {
		timeout, err := config.ParseDurationOrDefault("dingtalk.timeout", cfg.Dingtalk.Timeout, 10*time.Second)
		if err != nil {
			return nil, err
		}
		chat = dingtalk.New(dingtalk.Config{
			Webhook: cfg.Dingtalk.Webhook,
			Secret:  cfg.Dingtalk.Secret,
			Timeout: timeout,
		})
	}

	var mail notifier.MailSender
	if e := cfg.Email; config.Enabled(e.Enabled) {
		mode, err := email.ParseMode(e.Mode)
		if err != nil {
			return nil, fmt.Errorf("email.mode: %w", err)
		}
		timeout, err := config.ParseDurationOrDefault("email.timeout", e.Timeout, 20*time.Second)
		if err != nil {
			return nil, err
		}
		delay, err := config.ParseDurationField("email.retry_delay", e.RetryDelay)
		if err != nil {
			return nil, err
		}
		mail = email.New(email.Config{
			Host:        e.Host,
			Port:        e.Port,
			Mode:        mode,
			Username:    e.Username,
			Password:    e.Password,
			From:        e.From,
			To:          e.To,
			Timeout:     timeout,
			MaxAttempts: e.MaxAttempts,
			RetryDelay:  delay,
		}, log)
	}

	return notifier.NewDispatcher(chat, mail, log), nil
}
