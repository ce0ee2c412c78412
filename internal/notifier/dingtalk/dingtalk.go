// Package dingtalk posts text messages to a DingTalk custom robot webhook.
package dingtalk

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNoWebhook = errors.New("dingtalk webhook url is empty")
	ErrRejected  = errors.New("dingtalk rejected message")
)

type Config struct {
	Webhook string
	Secret  string
	Timeout time.Duration
}

// Client sends text messages. It does not retry.
type Client struct {
	cfg  Config
	http *resty.Client
	now  func() time.Time
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: resty.New().SetTimeout(cfg.Timeout),
		now:  time.Now,
	}
}

type textPayload struct {
	MsgType string      `json:"msgtype"`
	Text    textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

type apiResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Sign returns base64(HMAC-SHA256(secret, "{timestamp}\n{secret}")).
func Sign(secret string, timestampMS int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strconv.FormatInt(timestampMS, 10) + "\n" + secret))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Send posts text. With an empty secret the request is sent unsigned.
func (c *Client) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(c.cfg.Webhook) == "" {
		return ErrNoWebhook
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(textPayload{MsgType: "text", Text: textContent{Content: text}})
	if c.cfg.Secret != "" {
		ts := c.now().UnixMilli()
		r.SetQueryParams(map[string]string{
			"timestamp": strconv.FormatInt(ts, 10),
			"sign":      Sign(c.cfg.Secret, ts),
		})
	}

	resp, err := r.Post(c.cfg.Webhook)
	if err != nil {
		return fmt.Errorf("post dingtalk webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: http %s", ErrRejected, resp.Status())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil
	}
	var ar apiResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		// Non-JSON 2xx bodies are treated as accepted.
		return nil
	}
	if ar.ErrCode != 0 {
		return fmt.Errorf("%w: errcode=%d errmsg=%s", ErrRejected, ar.ErrCode, ar.ErrMsg)
	}
	return nil
}
