package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the file.
const (
	EnvDingtalkWebhook = "DINGTALK_WEBHOOK"
	EnvDingtalkSecret  = "DINGTALK_SECRET"
	EnvEmailUser       = "EMAIL_USER"
	EnvEmailPassword   = "EMAIL_PASSWORD"
	EnvEmailTo         = "EMAIL_TO"
	EnvEmailHost       = "EMAIL_SMTP_HOST"
	EnvEmailPort       = "EMAIL_SMTP_PORT"
	EnvEmailMode       = "EMAIL_MODE"
	EnvLotteryURL      = "LOTTERY_API_URL"
	EnvTimezone        = "DRAWWATCH_TIMEZONE"
	EnvLogLevel        = "LOG_LEVEL"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overwritten. An empty path means ".env",
// which may be absent; an explicit path must exist.
func LoadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any variable lookup reports as set and
// non-empty.
func ApplyEnv(c *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	str := []struct {
		key string
		dst *string
	}{
		{EnvDingtalkWebhook, &c.Dingtalk.Webhook},
		{EnvDingtalkSecret, &c.Dingtalk.Secret},
		{EnvEmailUser, &c.Email.Username},
		{EnvEmailPassword, &c.Email.Password},
		{EnvEmailTo, &c.Email.To},
		{EnvEmailHost, &c.Email.Host},
		{EnvEmailMode, &c.Email.Mode},
		{EnvLotteryURL, &c.Lottery.Endpoint},
		{EnvTimezone, &c.Timezone},
		{EnvLogLevel, &c.Logging.Level},
	}
	for _, s := range str {
		if v, ok := get(s.key); ok {
			*s.dst = v
		}
	}

	if v, ok := get(EnvEmailPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvEmailPort, v)
		}
		c.Email.Port = port
	}
	return nil
}
