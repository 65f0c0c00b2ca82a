package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"iot-dashboard/internal/utils"
)

// LoopStatus reports whether the dashboard event loop is running.
type LoopStatus interface {
	Running() bool
}

// FeedStatus reports the MQTT connection; nil means the live feed is disabled.
type FeedStatus interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	loop LoopStatus
	feed FeedStatus
}

func NewHealthchecker(loop LoopStatus, feed FeedStatus) healthchecker {
	return &healthcheckerImpl{loop: loop, feed: feed}
}

// handleHealthz fails only when the loop is down; a disconnected live feed is
// reported but polling keeps the dashboard working without it.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	liveFeed := "disabled"
	if h.feed != nil {
		liveFeed = "disconnected"
		if h.feed.IsConnected() {
			liveFeed = "connected"
		}
	}

	if !h.loop.Running() {
		slog.Error("healthcheck: dashboard loop not running")
		utils.WriteError(w, http.StatusServiceUnavailable, "dashboard loop not running")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "liveFeed": liveFeed})
}

func registerHealthcheck(r *mux.Router, loop LoopStatus, feed FeedStatus) {
	healthchecker := NewHealthchecker(loop, feed)
	r.HandleFunc("/healthz", healthchecker.handleHealthz).Methods(http.MethodGet)
}
