package notify

import "context"

// Notifier delivers a titled message to humans.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// FromWebhooks builds a Multi with one Slack notifier per non-empty webhook.
// It returns nil when none is configured.
func FromWebhooks(slackWebhooks ...string) Notifier {
	var m Multi
	for _, url := range slackWebhooks {
		if s := NewSlack(url); s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Multi fans out to every notifier and returns the first error.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
