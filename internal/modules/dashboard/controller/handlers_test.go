package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"iot-dashboard/internal/backend"
	"iot-dashboard/internal/modules/dashboard/service"
	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/modules/dashboard/types"
	"iot-dashboard/internal/modules/dashboard/views"
)

type mockService struct {
	view      state.DashboardView
	viewErr   error
	series    state.SeriesSnapshot
	seriesErr error

	relayErr   error
	relayCalls []string

	exportURL  string
	exportErr  error
	exportKind types.ExportKind
}

func (m *mockService) View(context.Context) (state.DashboardView, error) {
	return m.view, m.viewErr
}

func (m *mockService) Series(context.Context) (state.SeriesSnapshot, error) {
	return m.series, m.seriesErr
}

func (m *mockService) ControlRelay(_ context.Context, raw string) (types.RelayState, error) {
	m.relayCalls = append(m.relayCalls, raw)
	if m.relayErr != nil {
		return types.RelayUnknown, m.relayErr
	}
	return types.ParseRelayState(raw)
}

func (m *mockService) Export(_ context.Context, kind types.ExportKind) (string, error) {
	m.exportKind = kind
	return m.exportURL, m.exportErr
}

func newRouter(svc DashboardService) *mux.Router {
	r := mux.NewRouter()
	NewDashboardController(svc, "IoT Dashboard", false).RegisterRoutes(r)
	return r
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	return got
}

func Test_handleDashboard(t *testing.T) {
	initial := state.Render(state.New(state.Options{}))

	// Must run before anything loads the templates.
	t.Run("returns 500 and error body when render fails", func(t *testing.T) {
		rec := serve(t, newRouter(&mockService{view: initial}), http.MethodGet, "/", "")

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		if !strings.Contains(rec.Body.String(), "failed to render page") {
			t.Errorf("body = %q; expected 'failed to render page'", rec.Body.String())
		}
	})

	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	t.Run("renders page", func(t *testing.T) {
		rec := serve(t, newRouter(&mockService{view: initial}), http.MethodGet, "/", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q", ct)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "IoT Dashboard") || !strings.Contains(body, "--°C") {
			t.Errorf("body missing title or placeholders")
		}
	})

	t.Run("returns 503 when the loop stopped", func(t *testing.T) {
		rec := serve(t, newRouter(&mockService{viewErr: service.ErrStopped}), http.MethodGet, "/", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("rejects POST", func(t *testing.T) {
		rec := serve(t, newRouter(&mockService{view: initial}), http.MethodPost, "/", "")

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}

func Test_handleView(t *testing.T) {
	view := state.DashboardView{Cards: state.CardsView{Temperature: "24.5°C", Humidity: "60.2%", Light: "300 Lux"}}
	rec := serve(t, newRouter(&mockService{view: view}), http.MethodGet, "/api/view", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	got := decodeBody(t, rec)
	cards, ok := got["cards"].(map[string]any)
	if !ok {
		t.Fatalf("cards missing: %v", got)
	}
	if cards["temperature"] != "24.5°C" || cards["light"] != "300 Lux" {
		t.Errorf("cards = %v", cards)
	}
}

func Test_handleChart(t *testing.T) {
	t.Run("204 when empty", func(t *testing.T) {
		rec := serve(t, newRouter(&mockService{}), http.MethodGet, "/chart.svg", "")

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusNoContent)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("body = %q; want empty", rec.Body.String())
		}
	})

	t.Run("svg with data", func(t *testing.T) {
		snap := state.SeriesSnapshot{
			Labels:      []string{"14:30:05", "14:30:07"},
			Temperature: []float64{24.5, 24.7},
			Humidity:    []float64{60.2, 60.0},
			Light:       []float64{300, 310},
		}
		rec := serve(t, newRouter(&mockService{series: snap}), http.MethodGet, "/chart.svg", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Errorf("Content-Type = %q", ct)
		}
		if !strings.Contains(rec.Body.String(), "<svg") {
			t.Error("body is not SVG")
		}
	})

	t.Run("svg after first reading", func(t *testing.T) {
		st := state.New(state.Options{Location: time.UTC})
		st.ApplyLatest(types.Reading{
			Timestamp:   time.Date(2025, 2, 3, 14, 30, 5, 0, time.UTC),
			Temperature: 24.5,
			Humidity:    60.2,
			Light:       300,
		}, time.Date(2025, 2, 3, 14, 30, 6, 0, time.UTC))

		rec := serve(t, newRouter(&mockService{series: st.Series.Snapshot()}), http.MethodGet, "/chart.svg", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d, body %q", rec.Code, http.StatusOK, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "14:30:05") {
			t.Error("SVG missing the reading's time label")
		}
	})

	t.Run("loop error", func(t *testing.T) {
		rec := serve(t, newRouter(&mockService{seriesErr: errors.New("boom")}), http.MethodGet, "/chart.svg", "")

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleHistoryPartial(t *testing.T) {
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}
	view := state.DashboardView{History: []state.HistoryRow{{Time: "2025-02-03 14:30:05", Temperature: "24.5", Humidity: "60.2", Light: "300"}}}
	rec := serve(t, newRouter(&mockService{view: view}), http.MethodGet, "/partials/history", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "<td>2025-02-03 14:30:05</td>") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func Test_handleRelay(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		relayErr   error
		wantStatus int
		wantCalls  int
		wantState  string
	}{
		{name: "on", body: `{"state":"ON"}`, wantStatus: http.StatusOK, wantCalls: 1, wantState: "ON"},
		{name: "lowercase off", body: `{"state":"off"}`, wantStatus: http.StatusOK, wantCalls: 1, wantState: "OFF"},
		{name: "invalid json", body: `{"state":`, wantStatus: http.StatusBadRequest},
		{name: "unknown state", body: `{"state":"toggle"}`, wantStatus: http.StatusBadRequest},
		{name: "missing state", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "backend rejected", body: `{"state":"ON"}`, relayErr: backend.ErrRelayRejected, wantStatus: http.StatusBadGateway, wantCalls: 1},
		{name: "loop stopped", body: `{"state":"ON"}`, relayErr: service.ErrStopped, wantStatus: http.StatusServiceUnavailable, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{relayErr: tt.relayErr}
			rec := serve(t, newRouter(svc), http.MethodPost, "/api/relay", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if len(svc.relayCalls) != tt.wantCalls {
				t.Errorf("service called %d times; want %d", len(svc.relayCalls), tt.wantCalls)
			}
			if tt.wantState != "" {
				got := decodeBody(t, rec)
				if got["state"] != tt.wantState || got["status"] != "Status: "+tt.wantState {
					t.Errorf("body = %v; want state %s", got, tt.wantState)
				}
			}
		})
	}
}

func Test_handleExport(t *testing.T) {
	t.Run("returns url", func(t *testing.T) {
		svc := &mockService{exportURL: "http://backend:5000/api/sensor/statistik_data"}
		rec := serve(t, newRouter(svc), http.MethodPost, "/api/export/statistics", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if svc.exportKind != types.ExportStatistics {
			t.Errorf("kind = %q; want statistics", svc.exportKind)
		}
		if got := decodeBody(t, rec); got["url"] != svc.exportURL {
			t.Errorf("url = %v", got["url"])
		}
	})

	t.Run("busy", func(t *testing.T) {
		svc := &mockService{exportErr: state.ErrExportBusy}
		rec := serve(t, newRouter(svc), http.MethodPost, "/api/export/history", "")

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		ctrl := NewDashboardController(&mockService{}, "", false).(*dashboardControllerImpl)
		req := httptest.NewRequest(http.MethodPost, "/api/export/csv", nil)
		req = mux.SetURLVars(req, map[string]string{"kind": "csv"})
		rec := httptest.NewRecorder()

		ctrl.handleExport(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("GET not allowed", func(t *testing.T) {
		rec := serve(t, newRouter(&mockService{}), http.MethodGet, "/api/export/history", "")

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}
