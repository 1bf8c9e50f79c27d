package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/paisalens/paisalens/internal/domain/analysis"
	"github.com/paisalens/paisalens/internal/domain/charts"
	"github.com/paisalens/paisalens/internal/domain/statement"
)

const historyPageSize = 50

type homePage struct {
	Flashes []string
}

type historyPage struct {
	Flashes  []string
	Query    string
	Analyses []*analysis.Analysis
}

type detailPage struct {
	Flashes     []string
	Analysis    *analysis.Analysis
	AdviceHTML  template.HTML
	ReportToken string
	MailEnabled bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", homePage{Flashes: s.popFlashes(w, r)})
}

// handleAnalyze accepts a statement PDF upload and runs the full pipeline.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.flash(w, r, "Upload too large or malformed.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("statement")
	if err != nil {
		s.flash(w, r, "Choose a PDF statement to upload.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if !isPDF(header.Filename, header.Header.Get("Content-Type")) {
		s.flash(w, r, "Only PDF statements are supported.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.flash(w, r, "Could not read the uploaded file.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a, err := s.analysis.AnalyzeStatement(r.Context(), header.Filename, data)
	switch {
	case errors.Is(err, analysis.ErrNoTransactionText):
		s.flash(w, r, "No transaction text found in that statement. Is it a scanned image?")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case errors.Is(err, statement.ErrNotAPDF):
		s.flash(w, r, "That file does not look like a PDF.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case err != nil:
		s.logger.Error("analysis failed",
			slog.String("filename", header.Filename),
			slog.Any("error", err),
		)
		s.flash(w, r, "Analysis failed. Please try again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/analyses/"+a.ID.String(), http.StatusSeeOther)
}

// handleCharts renders charts for pasted statement text without storing
// anything.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	cleaned := strings.TrimSpace(r.FormValue("cleaned_text"))
	if cleaned == "" {
		s.flash(w, r, "Paste some statement text first.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	payload, err := s.analysis.GenerateCharts(r.Context(), cleaned)
	if err != nil {
		s.logger.Error("chart generation failed", slog.Any("error", err))
		s.flash(w, r, "Could not generate charts from that text.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderPage(w, payload); err != nil {
		s.logger.Error("failed to render charts", slog.Any("error", err))
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		analyses []*analysis.Analysis
		err      error
	)
	if query != "" {
		analyses, err = s.analysis.SearchAnalyses(r.Context(), query, historyPageSize)
	} else {
		analyses, err = s.analysis.List(r.Context(), historyPageSize)
	}
	if err != nil {
		s.logger.Error("failed to load history", slog.Any("error", err))
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	s.render(w, "history.html", historyPage{
		Flashes:  s.popFlashes(w, r),
		Query:    query,
		Analyses: analyses,
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadAnalysis(w, r)
	if !ok {
		return
	}

	adviceHTML, err := s.renderer.RenderFragment(a.AdviceMarkdown)
	if err != nil {
		s.logger.Error("failed to render advice", slog.Any("error", err))
		http.Error(w, "failed to render advice", http.StatusInternalServerError)
		return
	}

	page := detailPage{
		Flashes:     s.popFlashes(w, r),
		Analysis:    a,
		AdviceHTML:  template.HTML(adviceHTML),
		MailEnabled: s.analysis.MailEnabled(),
	}

	if a.ReportFileID != nil {
		token, err := s.tokens.Issue(a.ID, *a.ReportFileID)
		if err != nil {
			s.logger.Error("failed to sign report link", slog.Any("error", err))
		} else {
			page.ReportToken = token
		}
	}

	s.render(w, "detail.html", page)
}

func (s *Server) handleAnalysisCharts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	payload, err := s.analysis.ChartsFor(r.Context(), id)
	if err != nil {
		s.chartError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderPage(w, payload); err != nil {
		s.logger.Error("failed to render charts", slog.Any("error", err))
	}
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	payload, err := s.analysis.ChartsFor(r.Context(), id)
	if err != nil {
		s.chartError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode chart data", slog.Any("error", err))
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="category_spending.csv"`)
	if err := s.analysis.ExportCSV(r.Context(), id, w); err != nil {
		s.logger.Error("csv export failed", slog.Any("error", err))
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="spending_breakdown.xlsx"`)
	if err := s.analysis.ExportXLSX(r.Context(), id, w); err != nil {
		s.logger.Error("xlsx export failed", slog.Any("error", err))
	}
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	detail := "/analyses/" + id.String()

	to := strings.TrimSpace(r.FormValue("to"))
	if to == "" || !strings.Contains(to, "@") {
		s.flash(w, r, "Enter a valid email address.")
		http.Redirect(w, r, detail, http.StatusSeeOther)
		return
	}

	err := s.analysis.EmailReport(r.Context(), id, to)
	switch {
	case errors.Is(err, analysis.ErrMailDisabled):
		s.flash(w, r, "Email delivery is not configured on this server.")
	case errors.Is(err, analysis.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		s.logger.Error("failed to email report", slog.Any("error", err))
		s.flash(w, r, "Could not send the report. Please try again.")
	default:
		s.flash(w, r, fmt.Sprintf("Report sent to %s.", to))
	}

	http.Redirect(w, r, detail, http.StatusSeeOther)
}

// handleReportDownload streams a stored report referenced by a signed token.
func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	analysisID, fileID, err := s.tokens.Verify(r.PathValue("token"))
	if err != nil {
		http.Error(w, "invalid or expired link", http.StatusForbidden)
		return
	}

	rc, info, err := s.files.Open(r.Context(), analysisID, fileID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name))
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("report download interrupted", slog.Any("error", err))
	}
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) loadAnalysis(w http.ResponseWriter, r *http.Request) (*analysis.Analysis, bool) {
	id, ok := s.pathID(w, r)
	if !ok {
		return nil, false
	}

	a, err := s.analysis.Get(r.Context(), id)
	if errors.Is(err, analysis.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load analysis", slog.Any("error", err))
		http.Error(w, "failed to load analysis", http.StatusInternalServerError)
		return nil, false
	}
	return a, true
}

func (s *Server) chartError(w http.ResponseWriter, err error) {
	if errors.Is(err, analysis.ErrNotFound) {
		http.Error(w, "analysis not found", http.StatusNotFound)
		return
	}
	s.logger.Error("failed to build chart data", slog.Any("error", err))
	http.Error(w, "failed to build chart data", http.StatusInternalServerError)
}

func isPDF(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return contentType == "application/pdf"
}
