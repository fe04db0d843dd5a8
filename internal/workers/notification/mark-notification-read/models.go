// internal/workers/notification/mark-notification-read/models.go
package marknotificationread

type Input struct {
	NotificationID string `json:"notificationId"`
	RecipientKind  string `json:"recipientKind"`
	RecipientID    string `json:"recipientId"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	ReadAt         string `json:"readAt"` // RFC 3339
}
