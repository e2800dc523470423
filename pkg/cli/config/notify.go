package config

import (
	"github.com/m-mizutani/relcopy/pkg/domain/interfaces"
	slackinfra "github.com/m-mizutani/relcopy/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Notify holds completion notification configuration
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL notified after a successful copy",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("RELCOPY_SLACK_WEBHOOK_URL"),
		},
	}
}

// Notifier returns the configured notifier, or nil if notification is disabled
func (c *Notify) Notifier() interfaces.Notifier {
	if c.SlackWebhookURL == "" {
		return nil
	}
	return slackinfra.NewNotifier(c.SlackWebhookURL, nil)
}
