package dispatch_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

func TestNotificationRequest_Validate(t *testing.T) {
	testCases := []struct {
		name           string
		req            dispatch.NotificationRequest
		expectedFields []string
	}{
		{
			name: "Valid - all fields present",
			req:  dispatch.NotificationRequest{DeviceToken: "tok123", Title: "Hi", Body: "There"},
		},
		{
			name:           "Missing token",
			req:            dispatch.NotificationRequest{Title: "Hi", Body: "There"},
			expectedFields: []string{"FCM_Token"},
		},
		{
			name:           "Missing title",
			req:            dispatch.NotificationRequest{DeviceToken: "tok123", Body: "There"},
			expectedFields: []string{"title"},
		},
		{
			name:           "Missing body",
			req:            dispatch.NotificationRequest{DeviceToken: "tok123", Title: "Hi"},
			expectedFields: []string{"body"},
		},
		{
			name:           "Everything missing",
			req:            dispatch.NotificationRequest{},
			expectedFields: []string{"FCM_Token", "title", "body"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()

			if tc.expectedFields == nil {
				assert.NoError(t, err)
				return
			}

			var vErr *dispatch.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, dispatch.MissingFieldsMessage, vErr.Message)
			assert.Equal(t, tc.expectedFields, vErr.Fields)
		})
	}

	t.Run("Whitespace counts as present", func(t *testing.T) {
		req := dispatch.NotificationRequest{DeviceToken: " ", Title: " ", Body: " "}
		assert.NoError(t, req.Validate())
	})
}
