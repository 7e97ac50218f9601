package gateway

import (
	"context"

	"relay-router/internal/common/logging"
)

// Noop is the gateway used when no chat platform is configured.
// Outbound sends are logged and dropped; routing decisions and relay
// logs still happen, which is what local development needs.
type Noop struct{}

func (Noop) Reply(ctx context.Context, userID, text string) error {
	logging.Debug("noop gateway reply dropped", logging.String("user_id", userID))
	return nil
}

func (Noop) Notify(ctx context.Context, delegateID, text string) error {
	logging.Debug("noop gateway notify dropped", logging.String("delegate_id", delegateID))
	return nil
}

func (Noop) CreateChannel(ctx context.Context, name string) (string, error) {
	logging.Debug("noop gateway channel dropped", logging.String("name", name))
	return "", nil
}

func (Noop) Post(ctx context.Context, channelID, text string) error {
	return nil
}
