package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopit-admin/internal/domain"
	"shopit-admin/internal/dto"
	apperrors "shopit-admin/internal/errors"
)

type SetStatusUseCase interface {
	SetStatus(ctx context.Context, orderID, userID string, orderType domain.OrderType, newStatus string) (*dto.StatusUpdateResponse, error)
}

type AggregateView interface {
	Current() []domain.Order
	Subscribe() (<-chan []domain.Order, func())
}

type OrdersController struct {
	useCase SetStatusUseCase
	view    AggregateView
	logger  *zap.Logger
}

func NewOrdersController(useCase SetStatusUseCase, view AggregateView, logger *zap.Logger) *OrdersController {
	return &OrdersController{
		useCase: useCase,
		view:    view,
		logger:  logger,
	}
}

func (c *OrdersController) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": c.view.Current(),
	})
}

// HandleStreamOrders pushes the aggregate to the console over server-sent
// events: one event per publish, each carrying the full sorted snapshot.
func (c *OrdersController) HandleStreamOrders(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snapshots, cancel := c.view.Subscribe()
	defer cancel()

	if err := writeEvent(w, c.view.Current()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeEvent(w, snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (c *OrdersController) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID := chi.URLParam(r, "orderId")

	var req dto.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if validationErr := validateStatusUpdate(orderID, req); validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	result, err := c.useCase.SetStatus(r.Context(), orderID, req.UserID, domain.OrderType(req.OrderType), req.Status)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	// A failed push after a persisted status is reported, never rolled back.
	status := http.StatusOK
	if result.Notification.Error != "" {
		status = http.StatusBadGateway
	}
	c.writeJSON(w, status, result)
}

func validateStatusUpdate(orderID string, req dto.StatusUpdateRequest) error {
	var details []apperrors.ValidationDetail

	if orderID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId is required",
		})
	}

	if req.UserID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "userId",
			Message: "userId is required",
		})
	}

	if !domain.ValidOrderType(req.OrderType) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderType",
			Message: fmt.Sprintf("orderType must be %q or %q", domain.OrderTypeNormal, domain.OrderTypeVoiceChat),
		})
	}

	if !domain.ValidStatus(req.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is not a known order status",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *OrdersController) handleUseCaseError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		logger.Warn("status transition aborted", zap.String("reason", nfe.Message))
		c.writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "TARGET_NOT_FOUND",
			"message": nfe.Message,
		})
		return
	}

	logger.Error("status transition failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

func writeEvent(w http.ResponseWriter, snapshot []domain.Order) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrdersController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrdersController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
