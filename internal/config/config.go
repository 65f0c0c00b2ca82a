package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// BackendURL is the base URL of the sensor backend (scheme + host, optional path prefix).
	BackendURL     string
	BackendTimeout time.Duration

	LatestInterval     time.Duration
	StatisticsInterval time.Duration
	NotificationTTL    time.Duration
	ExportCooldown     time.Duration

	HistoryLimit   int
	SeriesCapacity int

	// DisplayLocation is used for every timestamp shown in the dashboard and for
	// parsing backend timestamps that carry no zone.
	DisplayLocation *time.Location

	// MQTTBroker empty disables the live feed.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// LiveFeedEnabled reports whether an MQTT broker was configured.
func (c Config) LiveFeedEnabled() bool {
	return c.MQTTBroker != ""
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	backendURL := strings.TrimSpace(os.Getenv("BACKEND_URL"))
	if backendURL == "" {
		backendURL = "http://localhost:5000"
	}
	u, err := url.Parse(backendURL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BACKEND_URL %q: %w", backendURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, fmt.Errorf("invalid BACKEND_URL %q (expected http(s)://host[:port])", backendURL)
	}
	backendURL = strings.TrimRight(backendURL, "/")

	backendTimeout, err := positiveDuration("BACKEND_TIMEOUT", "5s")
	if err != nil {
		return Config{}, err
	}
	latestInterval, err := positiveDuration("LATEST_INTERVAL", "2s")
	if err != nil {
		return Config{}, err
	}
	statisticsInterval, err := positiveDuration("STATISTICS_INTERVAL", "10s")
	if err != nil {
		return Config{}, err
	}
	notificationTTL, err := positiveDuration("NOTIFICATION_TTL", "3s")
	if err != nil {
		return Config{}, err
	}
	exportCooldown, err := positiveDuration("EXPORT_COOLDOWN", "2s")
	if err != nil {
		return Config{}, err
	}

	historyLimit, err := positiveInt("HISTORY_LIMIT", "50")
	if err != nil {
		return Config{}, err
	}
	seriesCapacity, err := positiveInt("SERIES_CAPACITY", "20")
	if err != nil {
		return Config{}, err
	}

	tz := strings.TrimSpace(os.Getenv("DISPLAY_TZ"))
	if tz == "" {
		tz = "Local"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DISPLAY_TZ %q: %w", tz, err)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT must be in 1-65535, got %d", mqttPort)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "iot-dashboard"
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "iot/sensor/data"
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           httpAddr,
		BackendURL:         backendURL,
		BackendTimeout:     backendTimeout,
		LatestInterval:     latestInterval,
		StatisticsInterval: statisticsInterval,
		NotificationTTL:    notificationTTL,
		ExportCooldown:     exportCooldown,
		HistoryLimit:       historyLimit,
		SeriesCapacity:     seriesCapacity,
		DisplayLocation:    loc,
		MQTTBroker:         mqttBroker,
		MQTTPort:           mqttPort,
		MQTTClientID:       mqttClientID,
		MQTTTopic:          mqttTopic,
	}, nil
}

func positiveDuration(key, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func positiveInt(key, def string) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
