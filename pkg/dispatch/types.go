// Package dispatch contains the public domain models and contracts of the
// push relay.
package dispatch

import "encoding/json"

// NotificationRequest is the inbound request to relay one push notification.
// The JSON names are the wire format accepted by the HTTP endpoint and the
// Pub/Sub trigger.
type NotificationRequest struct {
	DeviceToken string `json:"FCM_Token" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Body        string `json:"body" validate:"required"`
}

// UnmarshalJSON reads only the exact wire keys. encoding/json would also
// accept case variants such as "fcm_token". Non-string values count as absent.
func (r *NotificationRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NotificationRequest{
		DeviceToken: stringField(raw, "FCM_Token"),
		Title:       stringField(raw, "title"),
		Body:        stringField(raw, "body"),
	}
	return nil
}

func stringField(raw map[string]json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(raw[key], &s); err != nil {
		return ""
	}
	return s
}

// Outcome is the terminal state a dispatch ends in.
type Outcome string

const (
	OutcomeRejected Outcome = "rejected"
	OutcomeSent     Outcome = "sent"
	OutcomeFailed   Outcome = "failed"
)

// Source identifies which trigger a request came through.
type Source string

const (
	SourceHTTP   Source = "http"
	SourcePubsub Source = "pubsub"
)

// Result describes a notification the provider accepted.
type Result struct {
	DispatchID string
	MessageID  string
	Outcome    Outcome
}
