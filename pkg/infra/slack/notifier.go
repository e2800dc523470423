package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcopy/pkg/domain/interfaces"
	"github.com/m-mizutani/relcopy/pkg/domain/model"
	"github.com/slack-go/slack"
)

type notifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewNotifier creates a Notifier posting to a Slack incoming webhook
func NewNotifier(webhookURL string, httpClient *http.Client) interfaces.Notifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &notifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

// NotifyCopied posts a summary of the copied release
func (n *notifier) NotifyCopied(ctx context.Context, result *model.CopyResult) error {
	msg := &slack.WebhookMessage{
		Text: buildMessage(result),
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack notification",
			goerr.V("tag", result.Tag),
			goerr.V("to", result.To.FullName()),
		)
	}

	return nil
}

func buildMessage(result *model.CopyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Release `%s` has been copied from `%s` to `%s`", result.Tag, result.From.FullName(), result.To.FullName())
	if result.HTMLURL != "" {
		fmt.Fprintf(&b, "\n%s", result.HTMLURL)
	}
	if len(result.Assets) > 0 {
		fmt.Fprintf(&b, "\nAssets (%d): %s", len(result.Assets), strings.Join(result.Assets, ", "))
	}
	return b.String()
}
