package state

import (
	"errors"
	"fmt"

	"iot-dashboard/internal/modules/dashboard/types"
)

var ErrExportBusy = errors.New("export already in progress")

const exportLoadingLabel = "Loading..."

var exportIdleLabels = map[types.ExportKind]string{
	types.ExportHistory:    "Export all data (JSON)",
	types.ExportStatistics: "Export statistics (JSON)",
}

// exportOrder fixes the button order in rendered views.
var exportOrder = []types.ExportKind{types.ExportHistory, types.ExportStatistics}

// Exports tracks the cosmetic busy state of the two export buttons.
type Exports struct {
	busy map[types.ExportKind]bool
}

func NewExports() *Exports {
	return &Exports{busy: make(map[types.ExportKind]bool, len(exportOrder))}
}

// Begin marks kind busy; a busy button cannot be triggered again.
func (e *Exports) Begin(kind types.ExportKind) error {
	if _, ok := exportIdleLabels[kind]; !ok {
		return fmt.Errorf("unknown export kind %q", kind)
	}
	if e.busy[kind] {
		return ErrExportBusy
	}
	e.busy[kind] = true
	return nil
}

func (e *Exports) End(kind types.ExportKind) {
	delete(e.busy, kind)
}

func (e *Exports) Busy(kind types.ExportKind) bool {
	return e.busy[kind]
}

type ExportView struct {
	Kind     types.ExportKind `json:"kind"`
	Label    string           `json:"label"`
	Disabled bool             `json:"disabled"`
}

func RenderExports(e *Exports) []ExportView {
	out := make([]ExportView, 0, len(exportOrder))
	for _, kind := range exportOrder {
		v := ExportView{Kind: kind, Label: exportIdleLabels[kind]}
		if e != nil && e.Busy(kind) {
			v.Label = exportLoadingLabel
			v.Disabled = true
		}
		out = append(out, v)
	}
	return out
}
