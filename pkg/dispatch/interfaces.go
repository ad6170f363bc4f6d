package dispatch

import (
	"context"
)

// Sender defines the contract for a component that can deliver a single
// notification to one device through a push provider (e.g., Google's FCM).
type Sender interface {
	// Send builds the provider payload for the request and hands it to the
	// provider exactly once. It returns the provider's message identifier.
	// Failures are reported as *ProviderError.
	Send(ctx context.Context, req NotificationRequest) (string, error)
}

// Relayer runs one request through validation and a single provider send.
// It is shared by every trigger (HTTP, Pub/Sub).
type Relayer interface {
	Dispatch(ctx context.Context, source Source, req NotificationRequest) (Result, error)
}
