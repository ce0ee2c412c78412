package notifier

import (
	"context"
	"time"

	"drawwatch/internal/render"
	logx "drawwatch/pkg/logx"
)

// Channel names used in logs and reports.
const (
	ChannelDingtalk = "dingtalk"
	ChannelEmail    = "email"
)

// ChatSender posts a plain-text message.
type ChatSender interface {
	Send(ctx context.Context, text string) error
}

// MailSender sends an HTML email with the given subject.
type MailSender interface {
	Send(ctx context.Context, subject, html string) error
}

// Delivery is the outcome of one channel.
type Delivery struct {
	Channel string
	OK      bool
	Skipped bool
	Took    time.Duration
	Err     error
}

// Dispatcher sends a rendered message to the chat and mail channels in order.
// A nil sender disables its channel.
type Dispatcher struct {
	chat ChatSender
	mail MailSender
	log  logx.Logger
}

func NewDispatcher(chat ChatSender, mail MailSender, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{chat: chat, mail: mail, log: log}
}

// Dispatch attempts both channels once each and never returns an error:
// delivery failures are logged and reported in the result.
func (d *Dispatcher) Dispatch(ctx context.Context, msg render.Message) []Delivery {
	out := make([]Delivery, 0, 2)

	if d.chat == nil {
		out = append(out, Delivery{Channel: ChannelDingtalk, Skipped: true})
	} else {
		d.log.Info("sending chat notification", logx.String("channel", ChannelDingtalk))
		d.log.Debug("chat content", logx.String("text", msg.Text))
		out = append(out, d.deliver(ChannelDingtalk, func() error { return d.chat.Send(ctx, msg.Text) }))
	}

	if d.mail == nil {
		out = append(out, Delivery{Channel: ChannelEmail, Skipped: true})
	} else {
		d.log.Info("sending email notification", logx.String("channel", ChannelEmail), logx.String("subject", msg.Subject))
		out = append(out, d.deliver(ChannelEmail, func() error { return d.mail.Send(ctx, msg.Subject, msg.HTML) }))
	}
	return out
}

func (d *Dispatcher) deliver(channel string, send func() error) Delivery {
	start := time.Now()
	err := send()
	res := Delivery{Channel: channel, OK: err == nil, Took: time.Since(start), Err: err}
	if err != nil {
		d.log.Error("notification failed", logx.String("channel", channel), logx.Err(err), logx.Duration("took", res.Took))
	} else {
		d.log.Info("notification sent", logx.String("channel", channel), logx.Duration("took", res.Took))
	}
	return res
}
