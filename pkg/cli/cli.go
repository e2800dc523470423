package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relcopy/pkg/cli/config"
	"github.com/m-mizutani/relcopy/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// options holds internal CLI configuration
type options struct {
	stdout io.Writer
	stderr io.Writer
}

// Option is a functional option for Run
type Option func(*options)

// WithStdout sets the writer for command output
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithStderr sets the writer for logs and progress bars
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		o.stderr = w
	}
}

// Run runs the CLI application
func Run(ctx context.Context, args []string, opts ...Option) error {
	o := &options{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		logger    *slog.Logger
	)

	copyFlags, copyAction := cmdCopy(o)

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)
	flags = append(flags, copyFlags...)

	app := &cli.Command{
		Name:      "relcopy",
		Usage:     "Copy a GitHub release and its assets to another repository",
		Version:   types.Version,
		Writer:    o.stdout,
		ErrWriter: o.stderr,
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure(o.stderr)
			if err != nil {
				return nil, err
			}
			logger = logger.With("run_id", uuid.NewString())

			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: copyAction,
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentryCfg.Report(err)
		return err
	}

	return nil
}
