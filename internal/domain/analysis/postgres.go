package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/paisalens/paisalens/internal/domain/charts"
)

// ErrNotFound is returned when no analysis exists for the given ID.
var ErrNotFound = errors.New("analysis not found")

// pgxQuerier is satisfied by *pgxpool.Pool and by pgxmock in tests.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository creates a new PostgreSQL analysis repository
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new analysis
func (r *PostgresRepository) Create(ctx context.Context, a *Analysis) error {
	query := `
		INSERT INTO analyses (id, filename, page_count, kept_lines, dropped_lines, cleaned_text, advice_markdown, chart_data, model, report_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	chartJSON, err := marshalChartData(a.ChartData)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, query,
		a.ID,
		a.Filename,
		a.PageCount,
		a.KeptLines,
		a.DroppedLines,
		a.CleanedText,
		a.AdviceMarkdown,
		chartJSON,
		a.Model,
		a.ReportFileID,
	).Scan(&a.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// GetByID retrieves an analysis by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	query := `
		SELECT id, filename, page_count, kept_lines, dropped_lines, cleaned_text, advice_markdown, chart_data, model, report_file_id, created_at
		FROM analyses
		WHERE id = $1`

	a := &Analysis{}
	var chartJSON []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Filename,
		&a.PageCount,
		&a.KeptLines,
		&a.DroppedLines,
		&a.CleanedText,
		&a.AdviceMarkdown,
		&chartJSON,
		&a.Model,
		&a.ReportFileID,
		&a.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if a.ChartData, err = unmarshalChartData(chartJSON); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the most recent analyses. The cleaned text and advice are
// included; history pages that only need headlines can truncate.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Analysis, error) {
	query := `
		SELECT id, filename, page_count, kept_lines, dropped_lines, cleaned_text, advice_markdown, chart_data, model, report_file_id, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		a := &Analysis{}
		var chartJSON []byte

		if err := rows.Scan(
			&a.ID,
			&a.Filename,
			&a.PageCount,
			&a.KeptLines,
			&a.DroppedLines,
			&a.CleanedText,
			&a.AdviceMarkdown,
			&chartJSON,
			&a.Model,
			&a.ReportFileID,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		if a.ChartData, err = unmarshalChartData(chartJSON); err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}

// SetChartData stores the chart payload generated for an analysis
func (r *PostgresRepository) SetChartData(ctx context.Context, id uuid.UUID, chartJSON []byte) error {
	tag, err := r.db.Exec(ctx, `UPDATE analyses SET chart_data = $2 WHERE id = $1`, id, chartJSON)
	if err != nil {
		return fmt.Errorf("failed to set chart data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOlderThan returns IDs of analyses created before the cutoff
func (r *PostgresRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM analyses WHERE created_at < $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired analyses: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan analysis id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Delete removes an analysis
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return nil
}

func marshalChartData(p *charts.Payload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart data: %w", err)
	}
	return data, nil
}

func unmarshalChartData(data []byte) (*charts.Payload, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var p charts.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart data: %w", err)
	}
	return &p, nil
}
