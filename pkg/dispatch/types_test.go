package dispatch_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

func TestNotificationRequest_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected dispatch.NotificationRequest
	}{
		{
			name:     "Exact keys",
			payload:  `{"FCM_Token":"tok123","title":"Hi","body":"There"}`,
			expected: dispatch.NotificationRequest{DeviceToken: "tok123", Title: "Hi", Body: "There"},
		},
		{
			name:     "Case variants are ignored",
			payload:  `{"fcm_token":"tok123","TITLE":"Hi","Body":"There"}`,
			expected: dispatch.NotificationRequest{},
		},
		{
			name:     "Case variant does not shadow exact key",
			payload:  `{"FCM_Token":"tok123","title":"Hi","body":"There","fcm_token":""}`,
			expected: dispatch.NotificationRequest{DeviceToken: "tok123", Title: "Hi", Body: "There"},
		},
		{
			name:     "Duplicate exact key keeps the last value",
			payload:  `{"FCM_Token":"old","FCM_Token":"tok123","title":"Hi","body":"There"}`,
			expected: dispatch.NotificationRequest{DeviceToken: "tok123", Title: "Hi", Body: "There"},
		},
		{
			name:     "Non-string values are absent",
			payload:  `{"FCM_Token":123,"title":null,"body":{"text":"There"}}`,
			expected: dispatch.NotificationRequest{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := dispatch.NotificationRequest{DeviceToken: "stale"}
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &req))
			assert.Equal(t, tc.expected, req)
		})
	}

	t.Run("Non-object payload fails", func(t *testing.T) {
		var req dispatch.NotificationRequest
		assert.Error(t, json.Unmarshal([]byte(`["tok123"]`), &req))
	})
}
