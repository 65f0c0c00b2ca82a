package httpapi

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the router with the infrastructure routes; features add
// their own routes afterwards.
func NewRouter(staticFS fs.FS, loop LoopStatus, feed FeedStatus) *mux.Router {
	r := mux.NewRouter()
	registerHealthcheck(r, loop, feed)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	return r
}
