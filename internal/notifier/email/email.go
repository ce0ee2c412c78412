// Package email sends the draw summary as a single HTML message over an
// authenticated, encrypted SMTP session.
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"drawwatch/internal/clock"
	"drawwatch/internal/notifier"
	logx "drawwatch/pkg/logx"

	"github.com/wneessen/go-mail"
)

// Mode selects how the SMTP session is encrypted.
type Mode string

const (
	// ModeStartTLS connects in plain text and upgrades with STARTTLS (port 587).
	ModeStartTLS Mode = "starttls"
	// ModeTLS uses implicit TLS from the first byte (port 465).
	ModeTLS Mode = "tls"
)

// ParseMode accepts "starttls" and "tls" (also "ssl"/"implicit").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "starttls", "explicit":
		return ModeStartTLS, nil
	case "tls", "ssl", "implicit":
		return ModeTLS, nil
	default:
		return "", fmt.Errorf("unknown smtp mode %q (want starttls or tls)", s)
	}
}

// DefaultPort returns the submission port conventionally used by m.
func (m Mode) DefaultPort() int {
	if m == ModeTLS {
		return 465
	}
	return 587
}

var ErrNotConfigured = errors.New("email sender/recipient not configured")

type Config struct {
	Host     string
	Port     int
	Mode     Mode
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration

	MaxAttempts int
	RetryDelay  time.Duration

	// TLSConfig overrides the default verification against Host.
	TLSConfig *tls.Config
}

// Transport delivers a fully formed message.
type Transport interface {
	Deliver(ctx context.Context, msg *mail.Msg) error
}

// Client sends HTML email with bounded retry.
type Client struct {
	cfg       Config
	transport Transport
	clock     clock.Clock
	log       logx.Logger
}

type Option func(*Client)

// WithTransport replaces the SMTP transport.
func WithTransport(t Transport) Option { return func(c *Client) { c.transport = t } }

// WithClock replaces the clock used for retry delays and the Date header.
func WithClock(clk clock.Clock) Option { return func(c *Client) { c.clock = clk } }

func New(cfg Config, log logx.Logger, opts ...Option) *Client {
	if cfg.Mode == "" {
		cfg.Mode = ModeStartTLS
	}
	if cfg.Port <= 0 {
		cfg.Port = cfg.Mode.DefaultPort()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	c := &Client{cfg: cfg, clock: clock.Real{}, log: log.With(logx.String("channel", notifier.ChannelEmail))}
	for _, o := range opts {
		o(c)
	}
	if c.transport == nil {
		c.transport = NewSMTPTransport(cfg)
	}
	return c
}

// Send builds the message once and delivers it, retrying up to MaxAttempts
// times. It returns an error wrapping notifier.ErrRetriesExhausted when
// every attempt failed.
func (c *Client) Send(ctx context.Context, subject, html string) error {
	if c.cfg.From == "" || c.cfg.To == "" {
		return ErrNotConfigured
	}

	msg, err := buildMessage(c.cfg.From, c.cfg.To, subject, html, c.clock.Now())
	if err != nil {
		return err
	}

	policy := notifier.RetryPolicy{MaxAttempts: c.cfg.MaxAttempts, Delay: c.cfg.RetryDelay}
	attempts, err := notifier.Retry(ctx, c.clock, policy, c.log, Classify, func(ctx context.Context, attempt int) error {
		c.log.Info("sending email", logx.Int("attempt", attempt), logx.Int("max", c.cfg.MaxAttempts), logx.String("to", c.cfg.To))
		return c.transport.Deliver(ctx, msg)
	})
	if err != nil {
		c.log.Error("email not delivered", logx.Int("attempts", attempts), logx.Err(err))
		return err
	}
	return nil
}
