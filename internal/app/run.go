package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"iot-dashboard/internal/backend"
	"iot-dashboard/internal/config"
	httpapi "iot-dashboard/internal/httpapi"
	dashboard "iot-dashboard/internal/modules/dashboard"
	"iot-dashboard/internal/modules/dashboard/service"
	"iot-dashboard/internal/modules/dashboard/state"
	dashboardviews "iot-dashboard/internal/modules/dashboard/views"
	"iot-dashboard/internal/mqtt"
	"iot-dashboard/internal/scheduler"
	"iot-dashboard/internal/stream"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"backendURL", cfg.BackendURL,
		"backendTimeout", cfg.BackendTimeout,
		"latestInterval", cfg.LatestInterval,
		"statisticsInterval", cfg.StatisticsInterval,
		"historyLimit", cfg.HistoryLimit,
		"seriesCapacity", cfg.SeriesCapacity,
		"displayTZ", cfg.DisplayLocation.String(),
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	if err := dashboardviews.LoadTemplates(); err != nil {
		return err
	}

	logger := slog.Default()
	client := backend.NewClient(cfg, logger)
	dash := service.New(client, service.Options{
		State: state.Options{
			SeriesCapacity: cfg.SeriesCapacity,
			HistoryLimit:   cfg.HistoryLimit,
			Location:       cfg.DisplayLocation,
		},
		NotificationTTL: cfg.NotificationTTL,
		ExportCooldown:  cfg.ExportCooldown,
	}, logger)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- dash.Run(loopCtx) }()

	hub := stream.NewHub(logger)

	// The feed is optional; a nil FeedStatus reports it as disabled.
	var feed httpapi.FeedStatus
	var subscriber *mqtt.Subscriber
	if cfg.LiveFeedEnabled() {
		subscriber = mqtt.NewSubscriber(cfg, logger)
		// Install the handler before connecting so nothing published right
		// after CONNACK is lost.
		dashboard.RegisterLiveFeed(subscriber, dash, logger)
		feed = subscriber
	}

	router := httpapi.NewRouter(dashboardviews.StaticFS(), dash, feed)
	dashboard.RegisterFeature(router, dash, hub, cfg.LiveFeedEnabled())

	if subscriber != nil {
		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing with polling only)", "error", err)
		}
	}

	sched := scheduler.New(logger,
		scheduler.Task{Name: "latest", Every: cfg.LatestInterval, Run: dash.FetchLatest},
		scheduler.Task{Name: "statistics", Every: cfg.StatisticsInterval, Run: dash.FetchStatistics},
		scheduler.Task{Name: "history", Run: dash.FetchHistory},
	)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case err := <-loopDone:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("scheduler stopping")
	sched.Stop()

	if subscriber != nil {
		slog.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	hub.Close()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	stopLoop()

	if runErr != nil {
		return runErr
	}
	return ctx.Err()
}
