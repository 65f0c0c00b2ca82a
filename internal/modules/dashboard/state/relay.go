package state

import "iot-dashboard/internal/modules/dashboard/types"

type RelayView struct {
	State  types.RelayState `json:"state"`
	Status string           `json:"status"`
}

func RenderRelay(s types.RelayState) RelayView {
	if s == types.RelayUnknown {
		return RelayView{State: s, Status: "Status: " + PlaceholderText}
	}
	return RelayView{State: s, Status: "Status: " + string(s)}
}
