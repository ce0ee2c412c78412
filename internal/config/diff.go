package config

import (
	"strings"

	logx "drawwatch/pkg/logx"
)

// SummarizeChange lists the changed top-level sections and safe log fields
// describing the new values. Secrets are reported only as "set" flags.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 6)
	attrs := make([]logx.Field, 0, 16)

	if oldCfg.Timezone != newCfg.Timezone || oldCfg.Schedule != newCfg.Schedule {
		changed = append(changed, "schedule")
		attrs = append(attrs,
			logx.String("timezone", newCfg.Timezone),
			logx.String("schedule", newCfg.Schedule),
		)
	}

	if oldCfg.Lottery != newCfg.Lottery {
		changed = append(changed, "lottery")
		attrs = append(attrs,
			logx.String("lottery.endpoint", newCfg.Lottery.Endpoint),
			logx.String("lottery.timeout", newCfg.Lottery.Timeout),
		)
	}

	op, np := oldCfg.Polling, newCfg.Polling
	if op.Phase1.Attempts(-1) != np.Phase1.Attempts(-1) || op.Phase1.Interval != np.Phase1.Interval ||
		op.Phase2.Attempts(-1) != np.Phase2.Attempts(-1) || op.Phase2.Interval != np.Phase2.Interval ||
		op.DenseStart != np.DenseStart || op.Deadline != np.Deadline ||
		op.Phase1RequireToday != np.Phase1RequireToday {
		changed = append(changed, "polling")
		attrs = append(attrs,
			logx.Int("polling.phase1.max_attempts", np.Phase1.Attempts(0)),
			logx.String("polling.dense_start", np.DenseStart),
			logx.Int("polling.phase2.max_attempts", np.Phase2.Attempts(0)),
			logx.String("polling.deadline", np.Deadline),
		)
	}

	od, nd := oldCfg.Dingtalk, newCfg.Dingtalk
	if Enabled(od.Enabled) != Enabled(nd.Enabled) || od.Webhook != nd.Webhook || od.Secret != nd.Secret || od.Timeout != nd.Timeout {
		changed = append(changed, "dingtalk")
		attrs = append(attrs,
			logx.Bool("dingtalk.enabled", Enabled(nd.Enabled)),
			logx.Bool("dingtalk.webhook_set", strings.TrimSpace(nd.Webhook) != ""),
			logx.Bool("dingtalk.secret_set", nd.Secret != ""),
		)
	}

	oe, ne := oldCfg.Email, newCfg.Email
	oe.Enabled, ne.Enabled = nil, nil
	if Enabled(oldCfg.Email.Enabled) != Enabled(newCfg.Email.Enabled) || oe != ne {
		changed = append(changed, "email")
		attrs = append(attrs,
			logx.Bool("email.enabled", Enabled(newCfg.Email.Enabled)),
			logx.String("email.host", ne.Host),
			logx.Int("email.port", ne.Port),
			logx.String("email.mode", ne.Mode),
			logx.String("email.to", ne.To),
			logx.Bool("email.password_set", ne.Password != ""),
		)
	}

	ol, nl := oldCfg.Logging, newCfg.Logging
	if ol.Level != nl.Level || Enabled(ol.Console) != Enabled(nl.Console) || ol.File != nl.File {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", nl.Level),
			logx.Bool("logging.console", Enabled(nl.Console)),
			logx.Bool("logging.file_enabled", nl.File.Enabled),
		)
	}

	return changed, attrs
}
