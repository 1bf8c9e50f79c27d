// Package server exposes the statement analyzer as a small server-rendered
// web application plus a JSON endpoint for chart data.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/cors"

	"github.com/paisalens/paisalens/internal/domain/analysis"
	"github.com/paisalens/paisalens/internal/domain/report"
	"github.com/paisalens/paisalens/pkg/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionName = "paisalens"

// Server holds the handlers for the web UI and the chart-data API.
type Server struct {
	analysis *analysis.Service
	renderer *report.Renderer
	tokens   *report.TokenIssuer
	files    storage.Storage
	store    *sessions.CookieStore
	tmpl     *template.Template
	logger   *slog.Logger

	maxUploadBytes int64
}

// New creates the server with parsed templates and a cookie session store
// used for flash messages.
func New(svc *analysis.Service, tokens *report.TokenIssuer, files storage.Storage, sessionSecret string, maxUploadMB int, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		analysis:       svc,
		renderer:       report.NewRenderer(),
		tokens:         tokens,
		files:          files,
		store:          sessions.NewCookieStore([]byte(sessionSecret)),
		tmpl:           tmpl,
		logger:         logger,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}, nil
}

// Routes builds the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /charts", s.handleCharts)

	mux.HandleFunc("GET /analyses", s.handleHistory)
	mux.HandleFunc("GET /analyses/{id}", s.handleDetail)
	mux.HandleFunc("GET /analyses/{id}/charts", s.handleAnalysisCharts)
	mux.HandleFunc("GET /analyses/{id}/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /analyses/{id}/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("POST /analyses/{id}/email", s.handleEmail)

	mux.HandleFunc("GET /reports/{token}", s.handleReportDownload)

	// Chart data is the only JSON surface; it is CORS-open so the charts
	// can be embedded elsewhere.
	api := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	})
	mux.Handle("GET /api/analyses/{id}/chart-data", api.Handler(http.HandlerFunc(s.handleChartData)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return s.logRequests(mux)
}

// logRequests wraps the mux with structured access logging.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// flash stores a message shown on the next rendered page.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, msg string) {
	session, _ := s.store.Get(r, sessionName)
	session.AddFlash(msg)
	if err := session.Save(r, w); err != nil {
		s.logger.Warn("failed to save session", slog.Any("error", err))
	}
}

// popFlashes drains pending flash messages.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := s.store.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) > 0 {
		if err := session.Save(r, w); err != nil {
			s.logger.Warn("failed to save session", slog.Any("error", err))
		}
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("failed to render template",
			slog.String("template", name),
			slog.Any("error", err),
		)
	}
}
