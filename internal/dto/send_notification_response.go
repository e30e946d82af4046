package dto

import "encoding/json"

type SendNotificationResponse struct {
	Message     string          `json:"message"`
	FCMResponse json.RawMessage `json:"fcmResponse"`
}

type SendNotificationErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
