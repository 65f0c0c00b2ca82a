package service

import (
	"context"

	"iot-dashboard/internal/metrics"
	"iot-dashboard/internal/modules/dashboard/state"
	"iot-dashboard/internal/modules/dashboard/types"
)

// ControlRelay parses raw, sends the command and reflects the acknowledged
// state. Exactly one notification is shown per sent command. An unparseable
// state is returned as an error before anything is sent.
func (d *Dashboard) ControlRelay(ctx context.Context, raw string) (types.RelayState, error) {
	want, err := types.ParseRelayState(raw)
	if err != nil {
		return types.RelayUnknown, err
	}

	_, err = d.backend.ControlRelay(ctx, want)
	if err != nil {
		metrics.RelayCommandsTotal.WithLabelValues(string(want), metrics.ResultError).Inc()
		d.logger.Warn("relay command failed", "state", want, "error", err)
		if dErr := d.Notify(ctx, MsgRelayFailed, types.NotificationError); dErr != nil {
			d.logger.Debug("relay failure not shown", "error", dErr)
		}
		return types.RelayUnknown, err
	}

	metrics.RelayCommandsTotal.WithLabelValues(string(want), metrics.ResultOK).Inc()
	d.logger.Info("relay switched", "state", want)
	msg := MsgRelayOff
	if want == types.RelayOn {
		msg = MsgRelayOn
	}
	err = d.dispatch(ctx, func(st *state.AppState) bool {
		st.ApplyRelay(want)
		d.notify(st, msg, types.NotificationSuccess)
		return true
	})
	if err != nil {
		return types.RelayUnknown, err
	}
	return want, nil
}
