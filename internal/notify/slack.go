package notify

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// SlackNotifier posts escalated turns to an HR channel so a human can pick
// them up. Notification is best-effort; the turn itself never fails on it.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	logger  *logrus.Logger
}

// NewSlackNotifier returns nil when token or channel are unset, which callers
// treat as notifications disabled.
func NewSlackNotifier(token, channel string, logger *logrus.Logger) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
		logger:  logger,
	}
}

// NotifyEscalation posts one message for an escalated turn.
func (n *SlackNotifier) NotifyEscalation(sessionID, userText string) error {
	text := fmt.Sprintf(":rotating_light: Escalated conversation `%s`\n> %s", sessionID, userText)

	_, _, err := n.client.PostMessage(n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("failed to post escalation notice: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"channel":    n.channel,
	}).Info("Escalation notice posted to Slack")

	return nil
}
