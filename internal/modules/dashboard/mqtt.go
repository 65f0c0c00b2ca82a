package dashboard

import (
	"context"
	"log/slog"
	"time"

	"iot-dashboard/internal/modules/dashboard/service"
	"iot-dashboard/internal/modules/dashboard/types"
	"iot-dashboard/internal/mqtt"
)

// LiveFeed is satisfied by the MQTT subscriber.
type LiveFeed interface {
	SetReadingHandler(h mqtt.ReadingHandler)
}

const liveApplyTimeout = 5 * time.Second

// RegisterLiveFeed applies every reading pushed over MQTT to the dashboard.
func RegisterLiveFeed(feed LiveFeed, dashboard *service.Dashboard, logger *slog.Logger) {
	feed.SetReadingHandler(func(r types.Reading) error {
		ctx, cancel := context.WithTimeout(context.Background(), liveApplyTimeout)
		defer cancel()

		if err := dashboard.ApplyLiveReading(ctx, r); err != nil {
			logger.Warn("live reading not applied", "timestamp", r.Timestamp, "error", err)
			return err
		}
		return nil
	})
}
