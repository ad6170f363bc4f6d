// Package pipeline contains the Pub/Sub trigger: messages carrying the same
// JSON body as the HTTP endpoint are relayed one at a time.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

// NotificationRequestTransformer is a dataflow Transformer that unmarshals a
// raw message payload into a dispatch.NotificationRequest.
//
// Field presence is not checked here; the relay rejects incomplete requests
// so both triggers share one validation path.
func NotificationRequestTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*dispatch.NotificationRequest, bool, error) {
	var req dispatch.NotificationRequest

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		// skip=true lets the StreamingService route the message to the DLQ.
		return nil, true, fmt.Errorf("failed to unmarshal notification request from message %s: %w", msg.ID, err)
	}

	return &req, false, nil
}
