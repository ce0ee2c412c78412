package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/textproto"
	"strings"
	"syscall"
	"testing"
	"time"

	"drawwatch/internal/clock"
	"drawwatch/internal/notifier"
	logx "drawwatch/pkg/logx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeTransport struct {
	errs  []error // returned in order; nil entries succeed
	calls int
	last  []byte
	to    []string
}

func (f *fakeTransport) Deliver(ctx context.Context, msg *mail.Msg) error {
	f.calls++
	f.last = render(msg)
	f.to, _ = msg.GetRecipients()
	if f.calls <= len(f.errs) {
		return f.errs[f.calls-1]
	}
	return nil
}

func render(msg *mail.Msg) []byte {
	var buf bytes.Buffer
	_, _ = msg.WriteTo(&buf)
	return buf.Bytes()
}

func newTestClient(tr Transport, clk clock.Clock, attempts int) *Client {
	return New(Config{
		Host:        "smtp.example.com",
		Username:    "bot@example.com",
		Password:    "secret",
		To:          "ops@example.com",
		MaxAttempts: attempts,
		RetryDelay:  3 * time.Second,
	}, logx.Nop(), WithTransport(tr), WithClock(clk))
}

func TestSendFirstAttempt(t *testing.T) {
	tr := &fakeTransport{}
	clk := clock.NewFake(time.Date(2024, 5, 1, 21, 31, 0, 0, time.UTC))

	err := newTestClient(tr, clk, 5).Send(context.Background(), "1,2,3", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, []string{"ops@example.com"}, tr.to)
	assert.Empty(t, clk.Sleeps())
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	tr := &fakeTransport{errs: []error{io.EOF, &textproto.Error{Code: 451, Msg: "try later"}}}
	clk := clock.NewFake(time.Unix(0, 0))

	err := newTestClient(tr, clk, 5).Send(context.Background(), "s", "b")
	require.NoError(t, err)
	assert.Equal(t, 3, tr.calls)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, clk.Sleeps())
}

func TestSendExhaustsRetryBound(t *testing.T) {
	boom := &textproto.Error{Code: 535, Msg: "authentication failed"}
	tr := &fakeTransport{errs: []error{boom, boom, boom, boom, boom, boom, boom}}
	clk := clock.NewFake(time.Unix(0, 0))

	err := newTestClient(tr, clk, 5).Send(context.Background(), "s", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, notifier.ErrRetriesExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, tr.calls)
	assert.Len(t, clk.Sleeps(), 4)
}

func TestSendNotConfigured(t *testing.T) {
	c := New(Config{Host: "h"}, logx.Nop(), WithTransport(&fakeTransport{}))
	assert.ErrorIs(t, c.Send(context.Background(), "s", "b"), ErrNotConfigured)
}

func TestSendStopsOnCancel(t *testing.T) {
	tr := &fakeTransport{errs: []error{io.EOF, io.EOF, io.EOF}}
	clk := clock.NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestClient(tr, clk, 3).Send(ctx, "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tr.calls)
}

func TestBuildMessage(t *testing.T) {
	at := time.Date(2024, 5, 1, 21, 31, 0, 0, time.FixedZone("CST", 8*3600))
	html := "<html>開獎 " + strings.Repeat("x", 200) + "</html>"

	msg, err := buildMessage("bot@example.com", "ops@example.com", "1,2,3", html, at)
	require.NoError(t, err)

	head, body, ok := strings.Cut(string(render(msg)), "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "From: <bot@example.com>")
	assert.Contains(t, head, "To: <ops@example.com>")
	assert.Contains(t, head, "Subject: 1,2,3\r\n")
	assert.Contains(t, head, "Date: Wed, 01 May 2024 21:31:00 +0800")
	assert.Contains(t, head, "Message-ID: <")
	assert.Contains(t, head, "@example.com>")
	assert.Contains(t, head, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, head, "Content-Transfer-Encoding: base64")

	for _, line := range strings.Split(strings.TrimRight(body, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body, "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, html, string(decoded))
}

func TestBuildMessageEncodesSubject(t *testing.T) {
	msg, err := buildMessage("bot@example.com", "ops@example.com", "開獎 1,2,3", "b", time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(render(msg)), "Subject: =?UTF-8?b?")
}

func TestBuildMessageRejectsBadAddress(t *testing.T) {
	_, err := buildMessage("not an address", "ops@example.com", "s", "b", time.Now())
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStartTLS, m)
	assert.Equal(t, 587, m.DefaultPort())

	m, err = ParseMode("SSL")
	require.NoError(t, err)
	assert.Equal(t, ModeTLS, m)
	assert.Equal(t, 465, m.DefaultPort())

	_, err = ParseMode("pigeon")
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{Mode: ModeTLS, Username: "bot@example.com"}, logx.Nop())
	assert.Equal(t, 465, c.cfg.Port)
	assert.Equal(t, 5, c.cfg.MaxAttempts)
	assert.Equal(t, "bot@example.com", c.cfg.From)
	assert.IsType(t, &SMTPTransport{}, c.transport)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "auth", Classify(&textproto.Error{Code: 535, Msg: "bad credentials"}))
	assert.Equal(t, "protocol", Classify(&textproto.Error{Code: 550, Msg: "mailbox unavailable"}))
	assert.Equal(t, "connection", Classify(io.EOF))
	assert.Equal(t, "connection", Classify(syscall.ECONNRESET))
	assert.Equal(t, "auth", Classify(errors.New("SMTP AUTH failed: unencrypted connection")))
	assert.Equal(t, "connection", Classify(&mail.SendError{Reason: mail.ErrConnCheck}))
	assert.Equal(t, "protocol", Classify(&mail.SendError{Reason: mail.ErrSMTPRcptTo}))
	assert.Equal(t, "unknown", Classify(errors.New("weird")))
	assert.Equal(t, "", Classify(nil))
}
