package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	shadowid "github.com/shadowid/shadowid"
	"github.com/shadowid/shadowid/internal/obs"
)

// ReadyCheck pings one backing dependency.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Options carries the optional collaborators of the API.
type Options struct {
	Logger      *slog.Logger
	Version     string
	ReadyChecks []ReadyCheck
	// MetricsHandler serves GET /metrics. Nil mounts the default registry.
	MetricsHandler http.Handler
	// MaxBodyBytes caps request bodies. Zero uses 1 MiB.
	MaxBodyBytes int64
}

// API is the HTTP layer over the engine. It owns routing and status-code
// mapping; all credential logic stays in the engine.
type API struct {
	engine  *shadowid.Engine
	logger  *slog.Logger
	mux     *http.ServeMux
	opts    Options
	version string
}

// New wires the routes and returns the API.
func New(engine *shadowid.Engine, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = obs.Handler()
	}

	a := &API{
		engine:  engine,
		logger:  logger,
		mux:     http.NewServeMux(),
		opts:    opts,
		version: opts.Version,
	}

	a.mux.HandleFunc("/auth/register", a.handleRegister)
	a.mux.HandleFunc("/auth/token", a.handleToken)
	a.mux.HandleFunc("/auth/token/refresh", a.handleRefresh)
	a.mux.HandleFunc("/user/me", a.handleMe)

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReadyz)
	a.mux.Handle("/metrics", metricsHandler)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, a.opts.MaxBodyBytes)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = obs.Instrument(h)
	h = Logging(a.logger, h)
	h = RequestID(h)
	return h
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "shadowid",
		"version": a.version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, probe := range a.opts.ReadyChecks {
		if err := probe.Check(r.Context()); err != nil {
			a.logger.Warn("readiness probe failed", "probe", probe.Name, "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"probe":  probe.Name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

/*
====================================
HELPERS
====================================
*/

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
