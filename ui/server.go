package ui

import (
	"embed"
	"html/template"
	"log"
	"sync"

	"github.com/gin-gonic/gin"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
	"incidentscope/internal/config"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server serves the incident dashboard and its JSON endpoints
type Server struct {
	router    *gin.Engine
	templates *template.Template
	cfg       *config.Config
	dataset   *incident.Dataset
	analyzer  *analysis.Analyzer

	// Summary caching per filter; the dataset is immutable after load so
	// entries never expire.
	summaryCache map[string]*analysis.Summary
	cacheMutex   sync.RWMutex
}

// NewServer creates the dashboard server for a loaded dataset
func NewServer(cfg *config.Config, ds *incident.Dataset) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:       gin.Default(),
		templates:    templates,
		cfg:          cfg,
		dataset:      ds,
		analyzer:     analysis.NewAnalyzer(cfg.Analysis.TopN),
		summaryCache: make(map[string]*analysis.Summary),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleDashboard)
	s.router.GET("/report", s.handleReport)
	s.router.GET("/healthz", s.handleHealth)

	// Static chart PNGs rendered by the analyze command.
	if s.cfg.Output.Dir != "" {
		s.router.Static("/charts", s.cfg.Output.Dir)
	}

	api := s.router.Group("/api")
	api.GET("/summary", s.handleSummary)
	api.GET("/timeline", s.handleTimeline)
	api.GET("/response", s.handleResponse)
	api.GET("/breakdown/:dimension", s.handleBreakdown)
	api.GET("/incidents", s.handleIncidents)
	api.GET("/incidents.csv", s.handleIncidentsCSV)
}

// Start runs the HTTP server on the given address
func (s *Server) Start(addr string) error {
	log.Printf("[Server] dashboard listening on %s (%d incidents loaded)",
		addr, len(s.dataset.Records))
	return s.router.Run(addr)
}

// Router exposes the underlying handler, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// filteredSummary computes (or returns the cached) summary for a filter.
func (s *Server) filteredSummary(f incident.Filter) (*analysis.Summary, []incident.Incident) {
	records := f.Apply(s.dataset.Records)

	key := f.CacheKey()
	s.cacheMutex.RLock()
	cached, ok := s.summaryCache[key]
	s.cacheMutex.RUnlock()
	if ok {
		return cached, records
	}

	summary := s.analyzer.Summarize(records)
	s.cacheMutex.Lock()
	s.summaryCache[key] = summary
	s.cacheMutex.Unlock()
	return summary, records
}
