package dashboard

import (
	"net/http"

	"github.com/gorilla/mux"

	"iot-dashboard/internal/modules/dashboard/controller"
	"iot-dashboard/internal/modules/dashboard/service"
	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/stream"
)

const pageTitle = "IoT Sensor Dashboard"

// RegisterFeature mounts the dashboard pages and API on r and streams every
// state change to hub.
func RegisterFeature(r *mux.Router, dashboard *service.Dashboard, hub *stream.Hub, liveFeed bool) {
	dashboard.OnChange(func(v state.DashboardView) { hub.Publish(v) })

	dashboardController := controller.NewDashboardController(dashboard, pageTitle, liveFeed)
	dashboardController.RegisterRoutes(r)
	r.Handle("/ws", hub).Methods(http.MethodGet)
}
