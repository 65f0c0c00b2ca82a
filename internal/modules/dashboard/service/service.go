package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"iot-dashboard/internal/metrics"
	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/modules/dashboard/types"
)

// Messages shown to the user.
const (
	MsgLatestFailed     = "Failed to fetch latest sensor data"
	MsgHistoryFailed    = "Failed to load history"
	MsgRelayOn          = "Relay turned on"
	MsgRelayOff         = "Relay turned off"
	MsgRelayFailed      = "Failed to control relay"
	MsgExportHistory    = "All data page opened"
	MsgExportStatistics = "Statistics data page opened"
)

var (
	ErrAlreadyRunning = errors.New("dashboard already running")
	ErrStopped        = errors.New("dashboard stopped")
)

// Backend is the subset of the sensor backend the dashboard needs.
type Backend interface {
	Latest(ctx context.Context) (types.Reading, error)
	Statistics(ctx context.Context) (types.Statistics, error)
	History(ctx context.Context) ([]types.Reading, error)
	ControlRelay(ctx context.Context, state types.RelayState) (types.RelayAck, error)
	ExportURL(kind types.ExportKind) string
}

type Options struct {
	State           state.Options
	NotificationTTL time.Duration
	ExportCooldown  time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// event mutates or reads the state on the loop goroutine and reports whether
// anything visible changed.
type event func(st *state.AppState) bool

// Dashboard owns the application state. Everything that touches it runs as an
// event on the goroutine started by Run, so AppState needs no locking.
type Dashboard struct {
	backend Backend
	logger  *slog.Logger
	opts    Options

	events  chan event
	stopped chan struct{}
	started atomic.Bool
	running atomic.Bool

	seq [3]atomic.Uint64

	mu        sync.RWMutex
	listeners []func(state.DashboardView)
}

func New(backend Backend, opts Options, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = 3 * time.Second
	}
	if opts.ExportCooldown <= 0 {
		opts.ExportCooldown = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dashboard{
		backend: backend,
		logger:  logger.With("component", "dashboard"),
		opts:    opts,
		events:  make(chan event),
		stopped: make(chan struct{}),
	}
}

// OnChange registers fn to receive the rendered view after every visible
// change. fn runs on the loop goroutine and must not block.
func (d *Dashboard) OnChange(fn func(state.DashboardView)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// Run processes events until ctx is done. It may be called once.
func (d *Dashboard) Run(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	st := state.New(d.opts.State)
	d.running.Store(true)
	defer func() {
		d.running.Store(false)
		close(d.stopped)
		d.logger.Info("dashboard loop stopped")
	}()
	d.logger.Info("dashboard loop started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			if ev(st) {
				d.publish(state.Render(st))
			}
		}
	}
}

// Running reports whether the loop is processing events.
func (d *Dashboard) Running() bool {
	return d.running.Load()
}

func (d *Dashboard) publish(view state.DashboardView) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, fn := range d.listeners {
		fn(view)
	}
}

// dispatch hands ev to the loop. Once it returns nil, ev has been received
// and runs before the loop looks at anything else.
func (d *Dashboard) dispatch(ctx context.Context, ev event) error {
	select {
	case d.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrStopped
	}
}

// View returns a snapshot of the rendered dashboard.
func (d *Dashboard) View(ctx context.Context) (state.DashboardView, error) {
	reply := make(chan state.DashboardView, 1)
	err := d.dispatch(ctx, func(st *state.AppState) bool {
		reply <- state.Render(st)
		return false
	})
	if err != nil {
		return state.DashboardView{}, err
	}
	return <-reply, nil
}

// Series returns a copy of the chart window.
func (d *Dashboard) Series(ctx context.Context) (state.SeriesSnapshot, error) {
	reply := make(chan state.SeriesSnapshot, 1)
	err := d.dispatch(ctx, func(st *state.AppState) bool {
		reply <- st.Series.Snapshot()
		return false
	})
	if err != nil {
		return state.SeriesSnapshot{}, err
	}
	return <-reply, nil
}

// Notify shows message until NotificationTTL elapses.
func (d *Dashboard) Notify(ctx context.Context, message string, kind types.NotificationKind) error {
	return d.dispatch(ctx, func(st *state.AppState) bool {
		d.notify(st, message, kind)
		return true
	})
}

// notify must run on the loop. Each notification gets its own removal timer.
func (d *Dashboard) notify(st *state.AppState, message string, kind types.NotificationKind) {
	n := st.Notifications.Add(message, kind, d.opts.Now())
	metrics.NotificationsTotal.WithLabelValues(string(kind)).Inc()

	time.AfterFunc(d.opts.NotificationTTL, func() {
		err := d.dispatch(context.Background(), func(st *state.AppState) bool {
			return st.Notifications.Remove(n.ID)
		})
		if err != nil {
			d.logger.Debug("notification removal skipped", "id", n.ID, "error", err)
		}
	})
}

// nextSeq hands out the sequence number for a fetch about to start.
func (d *Dashboard) nextSeq(kind state.FetchKind) uint64 {
	return d.seq[kind].Add(1)
}

func observeFetch(kind state.FetchKind, start time.Time) {
	metrics.FetchDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
}
