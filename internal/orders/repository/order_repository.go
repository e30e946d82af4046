package repository

import (
	"context"

	"shopit-admin/internal/domain"
	"shopit-admin/internal/store"
)

// StoreOrderRepository persists status changes into the realtime store.
// Normal and voice orders live in distinct sub-collections for the same
// logical order, so the order type selects the target.
type StoreOrderRepository struct {
	store store.Store
}

func NewStoreOrderRepository(st store.Store) *StoreOrderRepository {
	return &StoreOrderRepository{store: st}
}

func (r *StoreOrderRepository) UpdateStatus(ctx context.Context, userID string, orderType domain.OrderType, orderID, status string) error {
	return r.store.SetField(ctx, userID, collectionFor(orderType), orderID, "orderStatus", status)
}

func collectionFor(orderType domain.OrderType) store.Kind {
	if orderType == domain.OrderTypeVoiceChat {
		return store.KindVoiceOrders
	}
	return store.KindNormalOrders
}
