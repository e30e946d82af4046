package server

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	notificationctrl "shopit-admin/internal/notification/controller"
	ordersctrl "shopit-admin/internal/orders/controller"
)

func NewRouter(
	notificationCtrl *notificationctrl.NotificationController,
	ordersCtrl *ordersctrl.OrdersController,
	staticDir string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/send-notification", notificationCtrl.HandleSendNotification)
	r.Get("/orders", ordersCtrl.HandleListOrders)
	r.Get("/orders/stream", ordersCtrl.HandleStreamOrders)
	r.Put("/orders/{orderId}/status", ordersCtrl.HandleUpdateStatus)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(spaHandler(staticDir))

	return cors.AllowAll().Handler(r)
}

// spaHandler serves console assets and falls back to the single-page entry
// document for any unmatched path, so client-side routes deep-link cleanly.
func spaHandler(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))

	return func(w http.ResponseWriter, r *http.Request) {
		asset := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	}
}
