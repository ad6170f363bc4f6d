package fcm

import (
	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

// Platform defaults applied to every notification.
const (
	ImageURL          = "https://png.pngtree.com/png-clipart/20230926/original/pngtree-minimalist-vector-of-couple-hugging-in-single-line-art-vector-png-image_12871561.png"
	AndroidChannelID  = "high_importance_channel"
	AndroidSound      = "sound"
	APNSSound         = "default"
	Badge             = 1
	NotificationCount = 1
)

// BuildMessage maps a validated request onto the FCM message sent to a single
// device. Title and body are passed through untouched; everything else is a
// platform default.
func BuildMessage(req dispatch.NotificationRequest) *messaging.Message {
	badge := Badge
	count := NotificationCount

	return &messaging.Message{
		Token: req.DeviceToken,
		Notification: &messaging.Notification{
			Title:    req.Title,
			Body:     req.Body,
			ImageURL: ImageURL,
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				ChannelID:         AndroidChannelID,
				Sound:             AndroidSound,
				DefaultSound:      true,
				Priority:          messaging.PriorityHigh,
				NotificationCount: &count,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: APNSSound,
					Badge: &badge,
					Alert: &messaging.ApsAlert{
						Title: req.Title,
						Body:  req.Body,
					},
				},
			},
		},
	}
}
