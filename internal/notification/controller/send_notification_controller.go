package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopit-admin/internal/dto"
)

type SendUseCase interface {
	Send(ctx context.Context, target, orderID, status string) (json.RawMessage, error)
}

// NotificationController is the only externally reachable mutation surface
// of the dispatch subsystem. It is synchronous and single-shot: duplicate
// requests produce duplicate pushes.
type NotificationController struct {
	useCase SendUseCase
	logger  *zap.Logger
}

func NewNotificationController(useCase SendUseCase, logger *zap.Logger) *NotificationController {
	return &NotificationController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *NotificationController) HandleSendNotification(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeJSON(w, http.StatusBadRequest, dto.SendNotificationErrorResponse{
			Error: "Invalid JSON body",
		})
		return
	}

	// Validation happens before any network call.
	if req.FCMToken == "" || req.OrderID == "" || req.Status == "" {
		logger.Warn("missing required fields",
			zap.Bool("hasToken", req.FCMToken != ""),
			zap.String("orderId", req.OrderID),
			zap.String("status", req.Status),
		)
		c.writeJSON(w, http.StatusBadRequest, dto.SendNotificationErrorResponse{
			Error: "Missing required fields: fcmToken, orderId, or status",
		})
		return
	}

	fcmResponse, err := c.useCase.Send(r.Context(), req.FCMToken, req.OrderID, req.Status)
	if err != nil {
		logger.Error("error sending notification", zap.String("orderId", req.OrderID), zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, dto.SendNotificationErrorResponse{
			Error:   "Error sending notification",
			Details: err.Error(),
		})
		return
	}

	c.writeJSON(w, http.StatusOK, dto.SendNotificationResponse{
		Message:     "Notification sent successfully",
		FCMResponse: fcmResponse,
	})
}

func (c *NotificationController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
