package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"drawwatch/internal/app"
	"drawwatch/internal/config"
	"drawwatch/internal/poller"
	logx "drawwatch/pkg/logx"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK      = 0
	exitNoDraw  = 1
	exitStartup = 2
)

type options struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	code := exitCode(err)
	if err != nil {
		logx.NewConsole("info").Error("drawwatch failed", logx.Err(err), logx.Int("exit_code", code))
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, poller.ErrNoQualifyingDraw), errors.Is(err, context.Canceled):
		return exitNoDraw
	default:
		return exitStartup
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "drawwatch",
		Short:         "Poll the daily lottery draw and announce it on DingTalk and email",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (json, yaml or toml); empty means environment only")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default ./.env when present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging level (trace, debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newPreviewCmd(opts),
		newCheckCmd(opts),
	)
	return root
}

func newApp(opts *options) (*app.App, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		if err := os.Setenv(config.EnvLogLevel, opts.logLevel); err != nil {
			return nil, err
		}
	}
	a, err := app.New(config.NewManager(opts.configPath))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one polling cycle and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range rep.Deliveries {
				a.Logger().Info("delivery",
					logx.String("channel", d.Channel),
					logx.Bool("ok", d.OK),
					logx.Bool("skipped", d.Skipped),
				)
			}
			return nil
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Stay running and poll on the configured schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}

func newPreviewCmd(opts *options) *cobra.Command {
	var (
		file   string
		asHTML bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fetch the latest draw and print the rendered notification without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Preview(cmd.Context(), file, asHTML, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read a saved API response instead of fetching")
	cmd.Flags().BoolVar(&asHTML, "html", false, "print the email body instead of the chat text")
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.Config()
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: schedule=%q timezone=%s dingtalk=%t email=%t\n",
				cfg.Schedule, cfg.Timezone, config.Enabled(cfg.Dingtalk.Enabled), config.Enabled(cfg.Email.Enabled))
			return nil
		},
	}
}
