package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// buildMessage assembles a single-part text/html message with a base64 body.
func buildMessage(from, to, subject, html string, at time.Time) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithEncoding(mail.EncodingB64), mail.WithNoDefaultUserAgent())
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid to address %q: %w", to, err)
	}

	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 {
		domain = strings.TrimRight(from[i+1:], ">")
	}

	m.Subject(subject)
	m.SetDateWithValue(at)
	m.SetMessageIDWithValue(uuid.NewString() + "@" + domain)
	m.SetBodyString(mail.TypeTextHTML, html)
	return m, nil
}
