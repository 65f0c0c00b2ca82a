package httpapi

import (
	"net/http"
	"time"

	"iot-dashboard/internal/config"
)

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
