package email

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"
	"syscall"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPTransport delivers through go-mail in either STARTTLS or implicit TLS
// mode. Each delivery dials a fresh session.
type SMTPTransport struct {
	host     string
	port     int
	mode     Mode
	username string
	password string
	timeout  time.Duration
	tls      *tls.Config
}

func NewSMTPTransport(cfg Config) *SMTPTransport {
	tlsCfg := cfg.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	return &SMTPTransport{
		host:     cfg.Host,
		port:     cfg.Port,
		mode:     cfg.Mode,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.Timeout,
		tls:      tlsCfg,
	}
}

func (t *SMTPTransport) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.port),
		mail.WithTimeout(t.timeout),
		mail.WithTLSConfig(t.tls),
	}
	if t.mode == ModeTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		// refuse to continue in plain text when the server lacks STARTTLS
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if t.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.username),
			mail.WithPassword(t.password),
		)
	}
	return opts
}

func (t *SMTPTransport) Deliver(ctx context.Context, msg *mail.Msg) error {
	if t.host == "" {
		return errors.New("smtp host is empty")
	}
	c, err := mail.NewClient(t.host, t.options()...)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

// Classify labels a delivery error as "auth", "connection", "protocol" or
// "unknown" for logging.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		switch {
		case sendErr.Reason == mail.ErrConnCheck:
			return "connection"
		case isAuthCode(sendErr.ErrorCode()):
			return "auth"
		default:
			return "protocol"
		}
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		if isAuthCode(tpErr.Code) {
			return "auth"
		}
		return "protocol"
	}
	var netErr net.Error
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, net.ErrClosed) || errors.As(err, &netErr) {
		return "connection"
	}
	if strings.Contains(strings.ToLower(err.Error()), "auth") {
		return "auth"
	}
	return "unknown"
}

func isAuthCode(code int) bool {
	switch code {
	case 530, 534, 535, 538:
		return true
	}
	return false
}
