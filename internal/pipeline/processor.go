package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

// NewProcessor relays each transformed request exactly once.
// Rejected and failed dispatches are terminal, so the processor always acks.
func NewProcessor(
	relay dispatch.Relayer,
	logger *slog.Logger,
) messagepipeline.StreamProcessor[dispatch.NotificationRequest] {

	return func(ctx context.Context, original messagepipeline.Message, request *dispatch.NotificationRequest) error {
		procLogger := logger.With("pubsub_msg_id", original.ID)

		result, err := relay.Dispatch(ctx, dispatch.SourcePubsub, *request)

		var vErr *dispatch.ValidationError
		switch {
		case err == nil:
			procLogger.Debug("Pubsub notification relayed", "dispatch_id", result.DispatchID, "message_id", result.MessageID)
		case errors.As(err, &vErr):
			procLogger.Warn("Dropping incomplete notification request", "dispatch_id", result.DispatchID, "missing", vErr.Fields)
		default:
			procLogger.Error("Dropping notification after provider failure", "dispatch_id", result.DispatchID, "err", err)
		}

		return nil
	}
}
