package cache

import "fmt"

const (
	// NotificationChannelPrefix is the pub/sub channel carrying a user's notifications.
	NotificationChannelPrefix = "notifications:user:%d"
	// NotificationChannelPattern subscribes to every user's channel.
	NotificationChannelPattern = "notifications:user:*"
)

// NotificationChannel returns the pub/sub channel for userID.
func NotificationChannel(userID uint) string {
	return fmt.Sprintf(NotificationChannelPrefix, userID)
}
