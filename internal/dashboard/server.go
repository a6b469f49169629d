package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// Analyzer runs one analysis per request.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*analyzer.Analysis, error)
}

// Server serves the HTML dashboard and its JSON API.
type Server struct {
	analyzer Analyzer
	gatherer prometheus.Gatherer
	tmpl     *template.Template
	started  time.Time
}

// NewServer parses the embedded templates. gatherer may be nil to disable /metrics.
func NewServer(a Analyzer, gatherer prometheus.Gatherer) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"json": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			return template.JS(b), err
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{analyzer: a, gatherer: gatherer, tmpl: tmpl, started: time.Now()}, nil
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /analyze", s.handleAnalyzePage)
	mux.HandleFunc("GET /api/v1/analyze", s.handleAnalyzeAPI)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.gatherer))
	}
	return mux
}

type pageData struct {
	Ticker       string
	Error        string
	Analysis     *analyzer.Analysis
	Fundamentals []report.Row
	Technicals   []report.Row
	Chart        report.ChartData
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{})
}

func (s *Server) handleAnalyzePage(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	res, err := s.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		s.render(w, statusFor(err), pageData{Ticker: ticker, Error: userMessage(err)})
		return
	}
	s.render(w, http.StatusOK, pageData{
		Ticker:       res.Ticker,
		Analysis:     res,
		Fundamentals: report.FundamentalRows(res.Fundamentals),
		Technicals:   report.TechnicalRows(res),
		Chart:        report.BuildChart(res),
	})
}

type apiResponse struct {
	*analyzer.Analysis
	Tables struct {
		Fundamentals []report.Row `json:"fundamentals"`
		Technicals   []report.Row `json:"technicals"`
	} `json:"tables"`
}

func (s *Server) handleAnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyzer.Analyze(r.Context(), r.URL.Query().Get("ticker"))
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": userMessage(err)})
		return
	}
	out := apiResponse{Analysis: res}
	out.Tables.Fundamentals = report.FundamentalRows(res.Fundamentals)
	out.Tables.Technicals = report.TechnicalRows(res)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("[ERROR] render dashboard: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

// statusFor maps analysis errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analyzer.ErrInvalidTicker), errors.Is(err, collector.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// userMessage keeps provider internals out of the page.
func userMessage(err error) string {
	var noData *collector.NoDataError
	switch {
	case errors.As(err, &noData):
		return noData.Error()
	case errors.Is(err, analyzer.ErrInvalidTicker):
		return "Please enter a valid ticker symbol."
	default:
		return "Error fetching data: " + err.Error()
	}
}
