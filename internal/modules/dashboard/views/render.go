package views

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"iot-dashboard/internal/modules/dashboard/state"
)

var ErrTemplatesNotLoaded = errors.New("dashboard templates not loaded: call views.LoadTemplates during startup")

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return fmt.Errorf("parse dashboard templates: %w", err)
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// DashboardData is the view model for the full page.
type DashboardData struct {
	Title string
	View  state.DashboardView
	// LiveFeed is true when readings also arrive over MQTT.
	LiveFeed bool
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	return execute(w, "dashboard.html", data)
}

// RenderHistoryPartial executes only the history table rows.
func RenderHistoryPartial(w io.Writer, rows []state.HistoryRow) error {
	return execute(w, "history", rows)
}

func execute(w io.Writer, name string, data any) error {
	if dashboardTmpl == nil {
		return ErrTemplatesNotLoaded
	}
	return dashboardTmpl.ExecuteTemplate(w, name, data)
}
