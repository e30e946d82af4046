package dto

// StatusUpdateRequest changes one order's status. OrderType selects the
// backing collection, since normal and voice orders live in distinct
// locations for the same logical order.
type StatusUpdateRequest struct {
	UserID    string `json:"userId"`
	OrderType string `json:"orderType"`
	Status    string `json:"status"`
}

// NotificationOutcome reports what happened to the push after the status
// write. Skipped means the new status never triggers a push; a failed
// dispatch leaves the persisted status standing.
type NotificationOutcome struct {
	Sent    bool   `json:"sent"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type StatusUpdateResponse struct {
	OrderID      string              `json:"orderId"`
	UserID       string              `json:"userId"`
	Status       string              `json:"status"`
	Notification NotificationOutcome `json:"notification"`
}
