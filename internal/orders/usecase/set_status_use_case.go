package usecase

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"shopit-admin/internal/domain"
	"shopit-admin/internal/dto"
	"shopit-admin/internal/metrics"
)

type PushTargetRepository interface {
	FindByUser(ctx context.Context, userID string) (*domain.PushTarget, error)
}

type OrderStatusRepository interface {
	UpdateStatus(ctx context.Context, userID string, orderType domain.OrderType, orderID, status string) error
}

type NotificationSender interface {
	Send(ctx context.Context, target, orderID, status string) (json.RawMessage, error)
}

type AggregateUpdater interface {
	ApplyStatus(orderID, userID, status string)
}

// SetStatusUseCase drives an operator status change: resolve the customer's
// push target, persist the new status, notify unless the status is Placed.
//
// Target resolution comes first: a status change for an unreachable customer
// aborts before anything is written, so the operator sees the failure before
// committing. Persistence and notification are not transactional - a failed
// push is reported but the persisted status stands.
type SetStatusUseCase struct {
	targets   PushTargetRepository
	orders    OrderStatusRepository
	sender    NotificationSender
	aggregate AggregateUpdater
	logger    *zap.Logger
}

func NewSetStatusUseCase(
	targets PushTargetRepository,
	orders OrderStatusRepository,
	sender NotificationSender,
	aggregate AggregateUpdater,
	logger *zap.Logger,
) *SetStatusUseCase {
	return &SetStatusUseCase{
		targets:   targets,
		orders:    orders,
		sender:    sender,
		aggregate: aggregate,
		logger:    logger,
	}
}

func (uc *SetStatusUseCase) SetStatus(ctx context.Context, orderID, userID string, orderType domain.OrderType, newStatus string) (*dto.StatusUpdateResponse, error) {
	uc.logger.Info("status transition started",
		zap.String("orderId", orderID),
		zap.String("userId", userID),
		zap.String("newStatus", newStatus),
	)

	target, err := uc.targets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.orders.UpdateStatus(ctx, userID, orderType, orderID, newStatus); err != nil {
		return nil, err
	}
	metrics.StatusTransitionsTotal.WithLabelValues(newStatus).Inc()

	// Reflect the change immediately; the live-stream event will confirm it.
	uc.aggregate.ApplyStatus(orderID, userID, newStatus)

	response := &dto.StatusUpdateResponse{
		OrderID: orderID,
		UserID:  userID,
		Status:  newStatus,
	}

	if newStatus == domain.OrderStatusPlaced {
		response.Notification.Skipped = true
		return response, nil
	}

	if _, err := uc.sender.Send(ctx, target.Token, orderID, newStatus); err != nil {
		uc.logger.Warn("status persisted but notification failed",
			zap.String("orderId", orderID),
			zap.Error(err),
		)
		response.Notification.Error = err.Error()
		return response, nil
	}

	response.Notification.Sent = true
	return response, nil
}
