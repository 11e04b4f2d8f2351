package http

import (
	"net/http"

	"eventseating/internal/delivery/http/controllers"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	managerController *controllers.ManagerController,
	webhookController *controllers.WebhookController,
	healthController *controllers.HealthController,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Manager dashboard
	mux.HandleFunc("GET /manager/data", managerController.GetData)
	mux.HandleFunc("POST /manager/assign-table", managerController.AssignTable)
	mux.HandleFunc("POST /manager/remove-player", managerController.RemovePlayer)
	mux.HandleFunc("POST /manager/auto-assign", managerController.AutoAssign)
	mux.HandleFunc("GET /manager/consistency", managerController.GetConsistency)

	// Payment notifications
	mux.HandleFunc("POST /webhooks/paypal", webhookController.PayPal)

	mux.HandleFunc("GET /health", healthController.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
