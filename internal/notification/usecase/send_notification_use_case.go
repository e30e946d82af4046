package usecase

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"shopit-admin/internal/metrics"
)

type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

type PushDispatcher interface {
	Send(ctx context.Context, accessToken, target, orderID, status string) (json.RawMessage, error)
}

// SendNotificationUseCase is one dispatch: exactly one credential exchange
// followed by exactly one push submission. Both the HTTP gateway and the
// status-transition flow go through here.
type SendNotificationUseCase struct {
	tokens     TokenProvider
	dispatcher PushDispatcher
	logger     *zap.Logger
}

func NewSendNotificationUseCase(tokens TokenProvider, dispatcher PushDispatcher, logger *zap.Logger) *SendNotificationUseCase {
	return &SendNotificationUseCase{
		tokens:     tokens,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *SendNotificationUseCase) Send(ctx context.Context, target, orderID, status string) (json.RawMessage, error) {
	accessToken, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		metrics.DispatchTotal.WithLabelValues(metrics.OutcomeAuthError).Inc()
		uc.logger.Error("credential exchange failed", zap.String("orderId", orderID), zap.Error(err))
		return nil, err
	}

	response, err := uc.dispatcher.Send(ctx, accessToken, target, orderID, status)
	if err != nil {
		metrics.DispatchTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		uc.logger.Error("push dispatch failed", zap.String("orderId", orderID), zap.Error(err))
		return nil, err
	}

	metrics.DispatchTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	uc.logger.Info("notification dispatched", zap.String("orderId", orderID), zap.String("status", status))
	return response, nil
}
