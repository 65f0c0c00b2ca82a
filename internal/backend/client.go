package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"iot-dashboard/internal/config"
	"iot-dashboard/internal/modules/dashboard/types"
)

const (
	latestPath         = "/api/sensor/latest"
	statisticsPath     = "/api/sensor/statistics"
	historyPath        = "/api/sensor/history"
	relayPath          = "/api/relay/control"
	statisticsDataPath = "/api/sensor/statistik_data"

	// maxBodyBytes bounds how much of a response is read; full history can be large.
	maxBodyBytes = 32 << 20
)

// Client talks to the sensor backend's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
	logger     *slog.Logger
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.DisplayLocation
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL:    cfg.BackendURL,
		httpClient: &http.Client{Timeout: cfg.BackendTimeout},
		loc:        loc,
		logger:     logger.With("component", "backend"),
	}
}

// Latest returns the most recent reading the backend has seen.
func (c *Client) Latest(ctx context.Context) (types.Reading, error) {
	var p readingPayload
	if err := c.getJSON(ctx, latestPath, &p); err != nil {
		return types.Reading{}, err
	}
	return p.toReading(c.loc)
}

func (c *Client) Statistics(ctx context.Context) (types.Statistics, error) {
	var p statisticsPayload
	if err := c.getJSON(ctx, statisticsPath, &p); err != nil {
		return types.Statistics{}, err
	}
	return p.toStatistics()
}

// History returns stored readings, newest first. Rows failing the presence
// check are skipped rather than failing the whole response.
func (c *Client) History(ctx context.Context) ([]types.Reading, error) {
	var rows []readingPayload
	if err := c.getJSON(ctx, historyPath, &rows); err != nil {
		return nil, err
	}
	out := make([]types.Reading, 0, len(rows))
	for i, row := range rows {
		r, err := row.toReading(c.loc)
		if err != nil {
			c.logger.Warn("skipping history row", "index", i, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ControlRelay asks the backend to switch the relay. A 2xx answer whose status
// is not "success" yields ErrRelayRejected together with the ack.
func (c *Client) ControlRelay(ctx context.Context, state types.RelayState) (types.RelayAck, error) {
	body, err := json.Marshal(relayRequest{State: state})
	if err != nil {
		return types.RelayAck{}, fmt.Errorf("marshal relay request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+relayPath, bytes.NewReader(body))
	if err != nil {
		return types.RelayAck{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return types.RelayAck{}, err
	}
	ack := decodeRelayAck(raw)
	if !ack.Succeeded() {
		return ack, fmt.Errorf("%w: status %q: %s", ErrRelayRejected, ack.Status, ack.Message)
	}
	return ack, nil
}

// ExportURL is the absolute backend URL a browser opens for kind.
func (c *Client) ExportURL(kind types.ExportKind) string {
	switch kind {
	case types.ExportStatistics:
		return c.baseURL + statisticsDataPath
	default:
		return c.baseURL + historyPath
	}
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}
	c.logger.Debug("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode}
	}
	return raw, nil
}
