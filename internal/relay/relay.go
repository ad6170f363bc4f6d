// Package relay runs one notification request through validation and a
// single provider send.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tinywideclouds/go-push-relay/internal/metrics"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

type Relay struct {
	sender    dispatch.Sender
	collector *metrics.DispatchCollector
	logger    *slog.Logger
}

var _ dispatch.Relayer = (*Relay)(nil)

func New(sender dispatch.Sender, collector *metrics.DispatchCollector, logger *slog.Logger) *Relay {
	return &Relay{
		sender:    sender,
		collector: collector,
		logger:    logger.With("component", "Relay"),
	}
}

// Dispatch validates req and, only if it is complete, sends it through the
// provider exactly once. Errors are *dispatch.ValidationError (nothing was
// sent) or *dispatch.ProviderError (the provider call failed).
func (r *Relay) Dispatch(ctx context.Context, source dispatch.Source, req dispatch.NotificationRequest) (dispatch.Result, error) {
	result := dispatch.Result{DispatchID: uuid.NewString()}
	log := r.logger.With("dispatch_id", result.DispatchID, "source", source)

	if err := req.Validate(); err != nil {
		result.Outcome = dispatch.OutcomeRejected
		r.collector.ObserveOutcome(ctx, source, result.Outcome)
		log.Warn("Rejected notification request", "err", err)
		return result, err
	}

	start := time.Now()
	messageID, err := r.sender.Send(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		result.Outcome = dispatch.OutcomeFailed
		r.collector.ObserveProviderCall(ctx, result.Outcome, elapsed)
		r.collector.ObserveOutcome(ctx, source, result.Outcome)

		var pErr *dispatch.ProviderError
		if !errors.As(err, &pErr) {
			pErr = dispatch.NewProviderError("unknown", err)
		}
		log.Error("Error sending notification", "code", pErr.Code, "err", pErr.Err)
		return result, pErr
	}

	result.MessageID = messageID
	result.Outcome = dispatch.OutcomeSent
	r.collector.ObserveProviderCall(ctx, result.Outcome, elapsed)
	r.collector.ObserveOutcome(ctx, source, result.Outcome)
	log.Info("Notification sent", "message_id", messageID)
	return result, nil
}
