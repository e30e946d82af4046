package dto

// SendNotificationRequest is the gateway's dispatch request. All three
// fields are required; a missing one is a client error and never reaches the
// network.
type SendNotificationRequest struct {
	FCMToken string `json:"fcmToken"`
	OrderID  string `json:"orderId"`
	Status   string `json:"status"`
}
