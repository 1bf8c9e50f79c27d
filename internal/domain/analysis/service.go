package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/paisalens/paisalens/internal/domain/charts"
	"github.com/paisalens/paisalens/internal/domain/report"
	"github.com/paisalens/paisalens/internal/domain/statement"
	"github.com/paisalens/paisalens/pkg/metrics"
	"github.com/paisalens/paisalens/pkg/storage"
)

// ErrNoTransactionText is returned when cleaning removed every line of the
// statement, leaving nothing to analyze.
var ErrNoTransactionText = errors.New("no transaction text found in statement")

// reportFilename is the name under which the rendered report is stored.
const reportFilename = "Financial_Report.html"

// Adviser is the completion surface the pipeline needs.
type Adviser interface {
	Advise(ctx context.Context, cleanedText string) (string, error)
	ChartData(ctx context.Context, cleanedText string) (*charts.Payload, error)
}

// Service runs the statement pipeline and manages stored analyses.
type Service struct {
	repo     Repository
	adviser  Adviser
	cleaner  *statement.Cleaner
	renderer *report.Renderer
	files    storage.Storage
	search   *Search
	mailer   *Mailer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	model    string
	tracer   trace.Tracer

	extract func(data []byte) (*statement.Document, error)
}

// NewService creates a new analysis service
func NewService(repo Repository, adviser Adviser, files storage.Storage, search *Search, model string, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		adviser:  adviser,
		cleaner:  statement.NewCleaner(),
		renderer: report.NewRenderer(),
		files:    files,
		search:   search,
		model:    model,
		logger:   logger,
		tracer:   otel.Tracer("paisalens/analysis"),
		extract:  statement.Extract,
	}
}

// WithMailer wires optional email delivery into the service
func (s *Service) WithMailer(m *Mailer) *Service {
	s.mailer = m
	return s
}

// WithMetrics wires prometheus collectors into the service
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// WithExtractor replaces the PDF text extractor, used in tests to avoid
// constructing real PDFs.
func (s *Service) WithExtractor(extract func(data []byte) (*statement.Document, error)) *Service {
	s.extract = extract
	return s
}

// AnalyzeStatement runs the full pipeline on an uploaded PDF:
// extract text, clean it, get advice, render the report and persist
// everything. The chart payload is generated lazily on first request.
func (s *Service) AnalyzeStatement(ctx context.Context, filename string, pdfData []byte) (*Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.AnalyzeStatement",
		trace.WithAttributes(attribute.String("statement.filename", filename)))
	defer span.End()

	a, err := s.analyze(ctx, filename, pdfData)
	if err != nil {
		span.RecordError(err)
		s.countAnalysis("error")
		return nil, err
	}

	s.countAnalysis("ok")
	return a, nil
}

func (s *Service) analyze(ctx context.Context, filename string, pdfData []byte) (*Analysis, error) {
	extractStart := time.Now()
	doc, err := s.extract(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to extract statement text: %w", err)
	}
	s.observeStage("extract", extractStart)

	cleanStart := time.Now()
	cleaned := s.cleaner.Clean(doc.Lines)
	s.observeStage("clean", cleanStart)

	if s.metrics != nil {
		for reason, n := range cleaned.Dropped {
			s.metrics.LinesDroppedTotal.WithLabelValues(reason).Add(float64(n))
		}
	}

	s.logger.Info("statement cleaned",
		slog.String("filename", filename),
		slog.Int("pages", doc.PageCount),
		slog.Int("kept_lines", len(cleaned.Lines)),
		slog.Int("dropped_lines", cleaned.DroppedTotal()),
	)

	if cleaned.Empty() {
		return nil, ErrNoTransactionText
	}

	adviseStart := time.Now()
	advice, err := s.adviser.Advise(ctx, cleaned.Text())
	if err != nil {
		return nil, err
	}
	s.observeStage("advise", adviseStart)

	html, err := s.renderer.Render(advice)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		ID:             uuid.New(),
		Filename:       filename,
		PageCount:      doc.PageCount,
		KeptLines:      len(cleaned.Lines),
		DroppedLines:   cleaned.DroppedTotal(),
		CleanedText:    cleaned.Text(),
		AdviceMarkdown: advice,
		Model:          s.model,
	}

	if _, err := s.files.Save(ctx, a.ID, filename, "application/pdf", bytes.NewReader(pdfData)); err != nil {
		return nil, fmt.Errorf("failed to store uploaded statement: %w", err)
	}

	reportInfo, err := s.files.Save(ctx, a.ID, reportFilename, "text/html; charset=utf-8", strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	a.ReportFileID = &reportInfo.ID

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.search.Index(a); err != nil {
		// The analysis is stored; a missing index entry only hurts search.
		s.logger.Warn("failed to index analysis", slog.Any("error", err))
	}

	return a, nil
}

// GenerateCharts builds the chart payload for arbitrary cleaned text, used
// by the charts tab where users paste text instead of uploading a PDF.
func (s *Service) GenerateCharts(ctx context.Context, cleanedText string) (*charts.Payload, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.GenerateCharts")
	defer span.End()

	payload, err := s.adviser.ChartData(ctx, strings.TrimSpace(cleanedText))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return payload, nil
}

// ChartsFor returns the chart payload for a stored analysis, generating
// and caching it on first request.
func (s *Service) ChartsFor(ctx context.Context, id uuid.UUID) (*charts.Payload, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.ChartsFor",
		trace.WithAttributes(attribute.String("analysis.id", id.String())))
	defer span.End()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ChartData != nil {
		return a.ChartData, nil
	}

	payload, err := s.adviser.ChartData(ctx, a.CleanedText)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	chartJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart data: %w", err)
	}
	if err := s.repo.SetChartData(ctx, id, chartJSON); err != nil {
		return nil, err
	}

	return payload, nil
}

// Get returns a stored analysis
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the most recent analyses
func (s *Service) List(ctx context.Context, limit int) ([]*Analysis, error) {
	return s.repo.List(ctx, limit)
}

// SearchAnalyses finds stored analyses matching the query string.
func (s *Service) SearchAnalyses(ctx context.Context, query string, limit int) ([]*Analysis, error) {
	ids, err := s.search.Find(query, limit)
	if err != nil {
		return nil, err
	}

	analyses := make([]*Analysis, 0, len(ids))
	for _, id := range ids {
		a, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // purged since it was indexed
		}
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	return analyses, nil
}

// ReportHTML loads the stored rendered report for an analysis.
func (s *Service) ReportHTML(ctx context.Context, id uuid.UUID) (string, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if a.ReportFileID == nil {
		return "", fmt.Errorf("analysis %s has no stored report", id)
	}

	rc, _, err := s.files.Open(ctx, a.ID, *a.ReportFileID)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	html, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}
	return string(html), nil
}

// MailEnabled reports whether email delivery is configured.
func (s *Service) MailEnabled() bool {
	return s.mailer != nil && s.mailer.Enabled()
}

// EmailReport sends the stored report to the given address.
func (s *Service) EmailReport(ctx context.Context, id uuid.UUID, to string) error {
	if s.mailer == nil || !s.mailer.Enabled() {
		return ErrMailDisabled
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	html, err := s.ReportHTML(ctx, id)
	if err != nil {
		return err
	}

	return s.mailer.SendReport(ctx, to, a.Filename, html)
}

// ExportCSV writes the category breakdown for an analysis as CSV.
func (s *Service) ExportCSV(ctx context.Context, id uuid.UUID, w io.Writer) error {
	payload, err := s.ChartsFor(ctx, id)
	if err != nil {
		return err
	}
	return WriteCategoryCSV(w, payload)
}

// ExportXLSX writes the spending breakdown for an analysis as a workbook.
func (s *Service) ExportXLSX(ctx context.Context, id uuid.UUID, w io.Writer) error {
	payload, err := s.ChartsFor(ctx, id)
	if err != nil {
		return err
	}
	return WriteBreakdownXLSX(w, payload)
}

// PurgeOlderThan removes analyses created before the cutoff together with
// their stored files and index entries. Returns the number purged.
func (s *Service) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.repo.ListOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, id := range ids {
		if err := s.files.DeleteAll(ctx, id); err != nil {
			s.logger.Warn("failed to delete analysis files",
				slog.String("analysis_id", id.String()),
				slog.Any("error", err),
			)
		}
		if err := s.search.Delete(id); err != nil {
			s.logger.Warn("failed to remove analysis from index",
				slog.String("analysis_id", id.String()),
				slog.Any("error", err),
			)
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return purged, err
		}
		purged++
	}

	return purged, nil
}

func (s *Service) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, start)
	}
}

func (s *Service) countAnalysis(status string) {
	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(status).Inc()
	}
}
