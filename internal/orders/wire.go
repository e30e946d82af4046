package orders

import (
	"go.uber.org/zap"

	"shopit-admin/internal/orders/controller"
	"shopit-admin/internal/orders/repository"
	"shopit-admin/internal/orders/service"
	"shopit-admin/internal/orders/usecase"
	"shopit-admin/internal/store"
)

// NewModule wires the aggregation and status-transition side. The aggregator
// is returned so main can start and stop it with the process.
func NewModule(st store.Store, sender usecase.NotificationSender, logger *zap.Logger) (*controller.OrdersController, *service.Aggregator) {
	aggregator := service.NewAggregator(st, logger)

	targetRepo := repository.NewStorePushTargetRepository(st)
	orderRepo := repository.NewStoreOrderRepository(st)

	setStatusUC := usecase.NewSetStatusUseCase(targetRepo, orderRepo, sender, aggregator, logger)

	return controller.NewOrdersController(setStatusUC, aggregator, logger), aggregator
}
