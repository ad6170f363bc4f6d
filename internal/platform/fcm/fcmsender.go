package fcm

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// This interface allows us to mock the client for unit testing.
type MessagingClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, msg *messaging.Message) (string, error)
}

type Sender struct {
	client MessagingClient
	dryRun bool
	logger *slog.Logger
}

// NewSender accepts the concrete client but stores it as the interface.
// Note: *messaging.Client automatically satisfies this interface.
// With dryRun set, FCM validates each message without delivering it.
func NewSender(client MessagingClient, dryRun bool, logger *slog.Logger) *Sender {
	return &Sender{
		client: client,
		dryRun: dryRun,
		logger: logger.With("component", "FCMSender"),
	}
}

// Send builds the payload for req and makes exactly one call to FCM.
func (s *Sender) Send(ctx context.Context, req dispatch.NotificationRequest) (string, error) {
	msg := BuildMessage(req)

	var (
		messageID string
		err       error
	)
	if s.dryRun {
		messageID, err = s.client.SendDryRun(ctx, msg)
	} else {
		messageID, err = s.client.Send(ctx, msg)
	}
	if err != nil {
		code := classify(err)
		s.logger.Debug("FCM rejected message", "code", code, "dry_run", s.dryRun, "err", err)
		return "", dispatch.NewProviderError(code, err)
	}

	return messageID, nil
}

// classify maps Firebase error codes onto short, log-friendly labels.
func classify(err error) string {
	switch {
	case messaging.IsUnregistered(err):
		return "unregistered"
	case messaging.IsInvalidArgument(err):
		return "invalid-argument"
	case messaging.IsSenderIDMismatch(err):
		return "sender-id-mismatch"
	case messaging.IsQuotaExceeded(err):
		return "quota-exceeded"
	case messaging.IsThirdPartyAuthError(err):
		return "third-party-auth"
	case messaging.IsUnavailable(err):
		return "unavailable"
	case messaging.IsInternal(err):
		return "internal"
	default:
		return "unknown"
	}
}
