package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/bmi"
	"github.com/kalambet/dietfit/internal/metrics"
	"github.com/kalambet/dietfit/internal/profile"
	"github.com/kalambet/dietfit/internal/silhouette"
	"github.com/kalambet/dietfit/internal/storage"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// ProfileViewer yields the current dashboard view. Implemented by
// profile.Manager.
type ProfileViewer interface {
	Get(ctx context.Context) (profile.View, error)
}

// MeasurementStore persists locally classified measurements. Implemented by
// storage.Store.
type MeasurementStore interface {
	SaveMeasurement(m storage.Measurement) (storage.Measurement, error)
	RecentMeasurements(limit int) ([]storage.Measurement, error)
}

type ServerDeps struct {
	Profile  ProfileViewer
	History  MeasurementStore // optional; /history is not mounted when nil
	Token    string
	Language language.Tag
}

// MeasurementJSON is the wire form of a history entry.
type MeasurementJSON struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	HeightCm  float64   `json:"height_cm"`
	WeightKg  float64   `json:"weight_kg"`
	Gender    string    `json:"gender"`
	BMI       float64   `json:"bmi"`
	Category  string    `json:"category"`
}

func measurementsJSON(ms []storage.Measurement) []MeasurementJSON {
	out := make([]MeasurementJSON, len(ms))
	for i, m := range ms {
		out[i] = MeasurementJSON(m)
	}
	return out
}

// NewHandler builds the preview server. Classification routes are public;
// anything derived from the signed-in user requires the bearer token.
func NewHandler(deps ServerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/health", handleHealth)
	r.Get("/classify", handleClassify(deps))
	r.Get("/silhouette.svg", handleSilhouetteSVG(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/dashboard", handleDashboard(deps))
		r.Get("/dashboard/silhouette.svg", handleDashboardSVG(deps))
		if deps.History != nil {
			r.Get("/history", handleHistory(deps))
		}
	})

	return r
}

func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveHTTP(route, status, time.Since(start))
		slog.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleClassify(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := requestLanguage(r, deps.Language)
		c, ok := classifyRequest(w, r, tag)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func handleSilhouetteSVG(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := requestLanguage(r, deps.Language)
		c, ok := classifyRequest(w, r, tag)
		if !ok {
			return
		}
		writeSVG(w, c.Silhouette)
	}
}

// classifyRequest parses and classifies the query, writing the error
// response itself when that fails.
func classifyRequest(w http.ResponseWriter, r *http.Request, tag language.Tag) (Classification, bool) {
	m, err := parseBodyMetrics(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return Classification{}, false
	}
	c, err := Classify(m, tag)
	if errors.Is(err, bmi.ErrInvalidMeasurement) {
		writeUnavailable(w, err, placeholder(tag))
		return Classification{}, false
	}
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return Classification{}, false
	}
	return c, true
}

func writeSVG(w http.ResponseWriter, d silhouette.Descriptor) {
	var buf bytes.Buffer
	if err := silhouette.Render(&buf, d); err != nil {
		httpError(w, http.StatusInternalServerError, "server_error", "rendering silhouette: %v", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func handleDashboard(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := deps.Profile.Get(r.Context())
		if err != nil {
			writeProfileError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleDashboardSVG(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := deps.Profile.Get(r.Context())
		if err != nil {
			writeProfileError(w, err)
			return
		}
		if v.Silhouette == nil {
			p := placeholder(deps.Language)
			if v.Placeholder != nil {
				p = *v.Placeholder
			}
			writeUnavailable(w, bmi.ErrInvalidMeasurement, p)
			return
		}
		writeSVG(w, *v.Silhouette)
	}
}

func writeProfileError(w http.ResponseWriter, err error) {
	if errors.Is(err, apiclient.ErrUnauthenticated) {
		httpError(w, http.StatusServiceUnavailable, "session_expired", "backend session expired: run `dietfit login`")
		return
	}
	httpError(w, http.StatusBadGateway, "upstream_error", "loading profile: %v", err)
}

func handleHistory(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be a positive integer")
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		ms, err := deps.History.RecentMeasurements(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "server_error", "listing measurements: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, measurementsJSON(ms))
	}
}
