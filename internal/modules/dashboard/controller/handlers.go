package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"iot-dashboard/internal/modules/dashboard/service"
	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/modules/dashboard/types"
	"iot-dashboard/internal/modules/dashboard/views"
	"iot-dashboard/internal/utils"
)

const maxRelayBody = 1 << 10

func (c *dashboardControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := c.service.View(r.Context())
	if err != nil {
		writeServiceError(w, "dashboard", err)
		return
	}
	data := &views.DashboardData{Title: c.title, View: view, LiveFeed: c.liveFeed}
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteBody(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (c *dashboardControllerImpl) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := c.service.View(r.Context())
	if err != nil {
		writeServiceError(w, "view", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

func (c *dashboardControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	snap, err := c.service.Series(r.Context())
	if err != nil {
		writeServiceError(w, "chart", err)
		return
	}
	var buf bytes.Buffer
	if err := views.RenderChart(&buf, snap); err != nil {
		if errors.Is(err, views.ErrNoChartData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		slog.Error("chart render failed", "points", len(snap.Labels), "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	utils.WriteBody(w, http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (c *dashboardControllerImpl) handleHistoryPartial(w http.ResponseWriter, r *http.Request) {
	view, err := c.service.View(r.Context())
	if err != nil {
		writeServiceError(w, "history partial", err)
		return
	}
	var buf bytes.Buffer
	if err := views.RenderHistoryPartial(&buf, view.History); err != nil {
		slog.Error("history partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteBody(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

type relayRequest struct {
	State string `json:"state"`
}

type relayResponse struct {
	State  types.RelayState `json:"state"`
	Status string           `json:"status"`
}

func (c *dashboardControllerImpl) handleRelay(w http.ResponseWriter, r *http.Request) {
	var req relayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRelayBody)).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := types.ParseRelayState(req.State); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := c.service.ControlRelay(r.Context(), req.State)
	if err != nil {
		if errors.Is(err, service.ErrStopped) {
			writeServiceError(w, "relay", err)
			return
		}
		utils.WriteError(w, http.StatusBadGateway, service.MsgRelayFailed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, relayResponse{State: s, Status: state.RenderRelay(s).Status})
}

func (c *dashboardControllerImpl) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := types.ParseExportKind(mux.Vars(r)["kind"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := c.service.Export(r.Context(), kind)
	if err != nil {
		if errors.Is(err, state.ErrExportBusy) {
			utils.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		writeServiceError(w, "export", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

// writeServiceError maps a failure to reach the dashboard loop to a response.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrStopped) {
		utils.WriteError(w, http.StatusServiceUnavailable, "dashboard is shutting down")
		return
	}
	slog.Error(op+" failed", "error", err)
	utils.WriteError(w, http.StatusInternalServerError, err.Error())
}
