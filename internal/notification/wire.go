package notification

import (
	"net/http"

	"go.uber.org/zap"

	"shopit-admin/internal/config"
	"shopit-admin/internal/notification/controller"
	"shopit-admin/internal/notification/service"
	"shopit-admin/internal/notification/usecase"
)

// NewModule wires the dispatch pipeline. The use case is returned alongside
// the controller so the status-transition flow can dispatch in process
// through the same path the HTTP gateway uses.
func NewModule(cfg *config.Config, logger *zap.Logger) (*controller.NotificationController, *usecase.SendNotificationUseCase) {
	// Provider-side timeouts apply; none are imposed here.
	httpClient := &http.Client{}

	tokenSvc := service.NewTokenService(cfg.FCM.ServiceAccount, httpClient, logger)
	fcmSvc := service.NewFCMService(cfg.FCM.Endpoint, service.Capabilities{AndroidStyling: true}, httpClient, logger)

	sendUC := usecase.NewSendNotificationUseCase(tokenSvc, fcmSvc, logger)
	return controller.NewNotificationController(sendUC, logger), sendUC
}
