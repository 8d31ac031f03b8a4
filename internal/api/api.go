package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
	"incidentscope/internal/config"
	"incidentscope/internal/ingest"
	"incidentscope/internal/report"
)

// App is the headless JSON API over a loaded incident dataset
type App struct {
	router   *chi.Mux
	cfg      *config.Config
	dataset  *incident.Dataset
	analyzer *analysis.Analyzer
}

// NewApp creates the API application
func NewApp(cfg *config.Config, ds *incident.Dataset) *App {
	app := &App{
		router:   chi.NewRouter(),
		cfg:      cfg,
		dataset:  ds,
		analyzer: analysis.NewAnalyzer(cfg.Analysis.TopN),
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/api/summary", a.handleSummary)
	a.router.Get("/api/quality", a.handleQuality)
	a.router.Get("/api/breakdown/{dimension}", a.handleBreakdown)
	a.router.Get("/api/distribution/{field}", a.handleDistribution)
	a.router.Get("/api/correlation", a.handleCorrelation)
	a.router.Get("/api/report", a.handleReport)
	a.router.Get("/healthz", a.handleHealth)
}

// Start runs the API server on the given address
func (a *App) Start(addr string) error {
	log.Printf("[API] listening on %s (%d incidents loaded)", addr, len(a.dataset.Records))
	server := &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return server.ListenAndServe()
}

// Router exposes the underlying handler, used by tests.
func (a *App) Router() *chi.Mux {
	return a.router
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"incidents": len(a.dataset.Records),
	})
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.analyzer.Summarize(a.dataset.Records))
}

func (a *App) handleQuality(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analysis.AssessQuality(a.dataset))
}

func (a *App) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	summary := a.analyzer.Summarize(a.dataset.Records)

	var items []analysis.CountItem
	switch dimension := chi.URLParam(r, "dimension"); dimension {
	case "types":
		items = summary.TypeBreakdown
	case "cities":
		items = summary.TopCities
	case "places":
		items = summary.PlaceTypes
	case "weekdays":
		items = summary.WeekdayCounts
	case "descriptions":
		items = summary.TopDescriptions
	default:
		writeError(w, http.StatusNotFound, "unknown dimension: "+dimension)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// numericFields maps the distribution endpoint's field names onto record
// accessors.
var numericFields = map[string]func(*incident.Incident) float64{
	ingest.ColResponseMinutes: func(in *incident.Incident) float64 { return in.ResponseMinutes },
	ingest.ColControlMinutes:  func(in *incident.Incident) float64 { return in.ControlMinutes },
	ingest.ColTotalMinutes:    func(in *incident.Incident) float64 { return in.TotalMinutes },
	ingest.ColUnitsResponded:  func(in *incident.Incident) float64 { return in.UnitsResponded },
	ingest.ColTotalCasualties: func(in *incident.Incident) float64 { return in.TotalCasualties },
}

func (a *App) handleDistribution(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	accessor, ok := numericFields[field]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown numeric field: "+field)
		return
	}

	bins := a.cfg.Analysis.HistogramBins
	if raw := r.URL.Query().Get("bins"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			bins = v
		}
	}

	values := analysis.NumericValues(a.dataset.Records, accessor)
	dist, err := analysis.AnalyzeDistribution(field, values, bins)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (a *App) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	xs, ys := analysis.PairedValues(
		values(a.dataset.Records, func(in *incident.Incident) float64 { return in.ResponseMinutes }),
		values(a.dataset.Records, func(in *incident.Incident) float64 { return in.ControlMinutes }),
	)
	summary := a.analyzer.Summarize(a.dataset.Records)
	writeJSON(w, http.StatusOK, map[string]any{
		"x":           ingest.ColResponseMinutes,
		"y":           ingest.ColControlMinutes,
		"relation":    analysis.CorrelateFields(xs, ys),
		"daily_trend": analysis.DailyTrend(summary.DailyCounts),
	})
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	summary := a.analyzer.Summarize(a.dataset.Records)
	quality := analysis.AssessQuality(a.dataset)
	writeJSON(w, http.StatusOK, report.BuildDatabaseSummary(a.dataset, summary, quality))
}

// values extracts a field per record keeping NaN placeholders, so two columns
// stay index-aligned for pairing.
func values(records []incident.Incident, accessor func(*incident.Incident) float64) []float64 {
	out := make([]float64, len(records))
	for i := range records {
		out[i] = accessor(&records[i])
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
