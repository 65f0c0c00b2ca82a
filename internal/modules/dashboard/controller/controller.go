package controller

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/modules/dashboard/types"
)

// DashboardService is what the HTTP layer needs from the dashboard loop.
type DashboardService interface {
	View(ctx context.Context) (state.DashboardView, error)
	Series(ctx context.Context) (state.SeriesSnapshot, error)
	ControlRelay(ctx context.Context, raw string) (types.RelayState, error)
	Export(ctx context.Context, kind types.ExportKind) (string, error)
}

type DashboardController interface {
	RegisterRoutes(r *mux.Router)
}

type dashboardControllerImpl struct {
	service  DashboardService
	title    string
	liveFeed bool
}

func NewDashboardController(service DashboardService, title string, liveFeed bool) DashboardController {
	return &dashboardControllerImpl{service: service, title: title, liveFeed: liveFeed}
}

func (c *dashboardControllerImpl) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", c.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/view", c.handleView).Methods(http.MethodGet)
	r.HandleFunc("/chart.svg", c.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/partials/history", c.handleHistoryPartial).Methods(http.MethodGet)
	r.HandleFunc("/api/relay", c.handleRelay).Methods(http.MethodPost)
	r.HandleFunc("/api/export/{kind}", c.handleExport).Methods(http.MethodPost)
}
