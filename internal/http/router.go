package http

import (
	"log/slog"
	"net/http"
)

type RouterConfig struct {
	Templates  *TemplateHandler
	Timetables *TimetableHandler
	Selections *SelectionHandler
	// Metrics, when set, is served at /metrics without identity headers.
	Metrics http.Handler
	// Middleware wraps every route, including /healthz and /metrics.
	Middleware []func(http.Handler) http.Handler
	Logger     *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	api := http.NewServeMux()

	if cfg.Templates != nil {
		api.HandleFunc("GET /templates/defaults", cfg.Templates.Defaults)
		api.HandleFunc("POST /templates/generate", cfg.Templates.Generate)
	}

	if cfg.Timetables != nil {
		api.HandleFunc("GET /timetables", cfg.Timetables.List)
		api.HandleFunc("POST /timetables", cfg.Timetables.Save)
		api.HandleFunc("GET /timetables/{id}", cfg.Timetables.Get)
		api.HandleFunc("DELETE /timetables/{id}", cfg.Timetables.Delete)
		api.HandleFunc("GET /timetables/{id}/grid", cfg.Timetables.Grid)
		api.HandleFunc("GET /timetables/{id}/export", cfg.Timetables.Export)
		api.HandleFunc("GET /timetables/{id}/conflicts", cfg.Timetables.Conflicts)
		api.HandleFunc("POST /timetables/{id}/publish", cfg.Timetables.Publish)
		api.HandleFunc("POST /timetables/{id}/unpublish", cfg.Timetables.Unpublish)
		api.HandleFunc("POST /timetables/{id}/days/{day}/periods", cfg.Timetables.AddPeriod)
		api.HandleFunc("PUT /timetables/{id}/days/{day}/periods/{periodId}", cfg.Timetables.UpdatePeriod)
		api.HandleFunc("DELETE /timetables/{id}/days/{day}/periods/{periodId}", cfg.Timetables.DeletePeriod)
	}

	if cfg.Selections != nil {
		api.HandleFunc("GET /preferences/selection", cfg.Selections.Get)
		api.HandleFunc("PUT /preferences/selection", cfg.Selections.Put)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	mux.Handle("/", RequirePrincipal(cfg.Logger)(api))

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}
