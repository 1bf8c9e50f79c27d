package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/paisalens/paisalens/internal/domain/charts"
	"github.com/paisalens/paisalens/pkg/metrics"
)

// ErrEmptyStatement is returned when there is no cleaned text to analyze.
// The LLM is never called with an empty statement.
var ErrEmptyStatement = errors.New("no transaction text to analyze")

// Completion kinds used for metrics labels.
const (
	kindAdvice    = "advice"
	kindChartData = "chart_data"
)

// Service generates advice and chart data from cleaned statement text.
// All completions share one rate limiter so a burst of form submissions
// cannot hammer the remote endpoint.
type Service struct {
	client  Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService creates a new advisor service
func NewService(client Client, logger *slog.Logger, timeout time.Duration, perSecond float64, burst int) *Service {
	return &Service{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		timeout: timeout,
		logger:  logger,
	}
}

// WithMetrics wires prometheus collectors into the service
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Advise returns markdown financial advice for the cleaned statement text.
func (s *Service) Advise(ctx context.Context, cleanedText string) (string, error) {
	out, err := s.complete(ctx, kindAdvice, advicePrompt(cleanedText), cleanedText)
	if err != nil {
		return "", err
	}
	return out, nil
}

// ChartData returns the structured spending breakdown for the cleaned
// statement text. The model response passes through fence stripping before
// being decoded against the chart schema.
func (s *Service) ChartData(ctx context.Context, cleanedText string) (*charts.Payload, error) {
	out, err := s.complete(ctx, kindChartData, chartPrompt(cleanedText), cleanedText)
	if err != nil {
		return nil, err
	}

	payload, err := charts.Parse(CleanModelJSON(out))
	if err != nil {
		s.logger.Error("model returned unparseable chart data",
			slog.Any("error", err),
			slog.Int("response_bytes", len(out)),
		)
		return nil, err
	}

	return payload, nil
}

func (s *Service) complete(ctx context.Context, kind, prompt, cleanedText string) (string, error) {
	if cleanedText == "" {
		return "", ErrEmptyStatement
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.client.Complete(ctx, prompt)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.LLMDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.LLMRequestsTotal.WithLabelValues(kind, status).Inc()
	}

	if err != nil {
		s.logger.Error("completion request failed",
			slog.String("kind", kind),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	s.logger.Debug("completion received",
		slog.String("kind", kind),
		slog.Duration("elapsed", elapsed),
		slog.Int("response_bytes", len(out)),
	)

	return out, nil
}
