package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analysisColumns = []string{
	"id", "filename", "page_count", "kept_lines", "dropped_lines",
	"cleaned_text", "advice_markdown", "chart_data", "model",
	"report_file_id", "created_at",
}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	a := &Analysis{
		ID:             uuid.New(),
		Filename:       "march.pdf",
		PageCount:      3,
		KeptLines:      42,
		DroppedLines:   17,
		CleanedText:    "Mar 02 Swiggy -450.50",
		AdviceMarkdown: "## Spending Summary",
		Model:          "deepseek/deepseek-chat",
	}

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO analyses`).
		WithArgs(a.ID, a.Filename, a.PageCount, a.KeptLines, a.DroppedLines,
			a.CleanedText, a.AdviceMarkdown, []byte(nil), a.Model, a.ReportFileID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, now, a.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	id := uuid.New()
	reportID := uuid.New()
	chartJSON := []byte(`{"category_spending":[{"category":"Food","amount":4500.5}]}`)

	mock.ExpectQuery(`SELECT id, filename, page_count`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(analysisColumns).AddRow(
			id, "march.pdf", 3, 42, 17,
			"Mar 02 Swiggy -450.50", "## Spending Summary", chartJSON,
			"deepseek/deepseek-chat", &reportID, time.Now(),
		))

	a, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "march.pdf", a.Filename)
	require.NotNil(t, a.ChartData)
	assert.EqualValues(t, 450050, a.ChartData.CategorySpending[0].Amount)
	require.NotNil(t, a.ReportFileID)
	assert.Equal(t, reportID, *a.ReportFileID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, filename, page_count`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(analysisColumns))

	_, err = repo.GetByID(context.Background(), id)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`SELECT id, filename, page_count`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(analysisColumns).
			AddRow(uuid.New(), "march.pdf", 3, 42, 17, "text", "advice", []byte(nil),
				"deepseek/deepseek-chat", (*uuid.UUID)(nil), time.Now()).
			AddRow(uuid.New(), "feb.pdf", 2, 30, 11, "text", "advice", []byte(nil),
				"deepseek/deepseek-chat", (*uuid.UUID)(nil), time.Now()))

	analyses, err := repo.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "march.pdf", analyses[0].Filename)
	assert.Nil(t, analyses[0].ChartData)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SetChartData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	id := uuid.New()
	chartJSON := []byte(`{"credit_vs_debit":{"total_credit":85000,"total_debit":770.5}}`)

	mock.ExpectExec(`UPDATE analyses SET chart_data`).
		WithArgs(id, chartJSON).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetChartData(context.Background(), id, chartJSON))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SetChartData_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	id := uuid.New()
	mock.ExpectExec(`UPDATE analyses SET chart_data`).
		WithArgs(id, []byte(`{}`)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.SetChartData(context.Background(), id, []byte(`{}`))
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListOlderThan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	oldID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM analyses WHERE created_at`).
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(oldID))

	ids, err := repo.ListOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{oldID}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM analyses`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}
