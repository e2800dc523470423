package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcopy/pkg/cli/config"
	"github.com/m-mizutani/relcopy/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCopy(o *options) ([]cli.Flag, cli.ActionFunc) {
	var (
		githubCfg config.GitHub
		copyCfg   config.Copy
		notifyCfg config.Notify
	)

	flags := append(githubCfg.Flags(), copyCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	action := func(ctx context.Context, c *cli.Command) error {
		logger := ctxlog.From(ctx)

		// The credential is checked before anything touches the network
		if err := githubCfg.Validate(); err != nil {
			return err
		}

		input, err := copyCfg.Input()
		if err != nil {
			return err
		}

		logger.Debug("Loaded configuration",
			slog.Any("github", githubCfg),
			slog.Any("copy", copyCfg),
		)

		githubClient, err := githubCfg.NewClient()
		if err != nil {
			return goerr.Wrap(err, "failed to create GitHub client")
		}

		var ucOpts []usecase.ReleaseOption
		if copyCfg.Progress {
			ucOpts = append(ucOpts, usecase.WithProgress(o.stderr))
		}
		releaseUC := usecase.NewRelease(githubClient, ucOpts...)

		if copyCfg.DryRun {
			release, err := releaseUC.GetRelease(ctx, input.From, input.Tag)
			if err != nil {
				return err
			}
			printPlan(o.stdout, input, release)
			return nil
		}

		result, err := releaseUC.CopyRelease(ctx, input)
		if err != nil {
			return err
		}

		if notifier := notifyCfg.Notifier(); notifier != nil {
			if err := notifier.NotifyCopied(ctx, result); err != nil {
				logger.Warn("Failed to send notification", slog.Any("error", err))
			}
		}

		return nil
	}

	return flags, action
}
