package service

import (
	"context"
	"errors"
	"time"

	"iot-dashboard/internal/metrics"
	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/modules/dashboard/types"
)

// Export returns the backend URL for kind and puts its button into the
// loading state for ExportCooldown. A busy button yields state.ErrExportBusy.
func (d *Dashboard) Export(ctx context.Context, kind types.ExportKind) (string, error) {
	reply := make(chan error, 1)
	err := d.dispatch(ctx, func(st *state.AppState) bool {
		if err := st.Exports.Begin(kind); err != nil {
			reply <- err
			return false
		}
		d.notify(st, exportMessage(kind), types.NotificationSuccess)
		time.AfterFunc(d.opts.ExportCooldown, func() {
			err := d.dispatch(context.Background(), func(st *state.AppState) bool {
				st.Exports.End(kind)
				return true
			})
			if err != nil {
				d.logger.Debug("export cooldown skipped", "kind", kind, "error", err)
			}
		})
		reply <- nil
		return true
	})
	if err != nil {
		return "", err
	}
	if err := <-reply; err != nil {
		if errors.Is(err, state.ErrExportBusy) {
			metrics.ExportsTotal.WithLabelValues(string(kind), metrics.ResultBusy).Inc()
		}
		return "", err
	}

	metrics.ExportsTotal.WithLabelValues(string(kind), metrics.ResultOK).Inc()
	url := d.backend.ExportURL(kind)
	d.logger.Info("export opened", "kind", kind, "url", url)
	return url, nil
}

func exportMessage(kind types.ExportKind) string {
	if kind == types.ExportStatistics {
		return MsgExportStatistics
	}
	return MsgExportHistory
}
