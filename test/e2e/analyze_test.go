// Package e2etest exercises the statement pipeline end to end through the
// HTTP surface, with the LLM stubbed out.
package e2etest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisalens/paisalens/internal/domain/advisor"
	"github.com/paisalens/paisalens/internal/domain/analysis"
	"github.com/paisalens/paisalens/internal/domain/report"
	"github.com/paisalens/paisalens/internal/domain/statement"
	"github.com/paisalens/paisalens/internal/server"
	"github.com/paisalens/paisalens/pkg/storage"
)

// scriptedClient plays back canned completions: markdown for the advice
// prompt, fenced JSON for the chart prompt, the way real models answer.
type scriptedClient struct {
	mu      sync.Mutex
	prompts []string
}

const cannedAdvice = `## Spending Summary

| Category | Amount |
|----------|--------|
| Food     | ₹4,500 |

### Ways to save ₹5,000/month

- Cook twice a week instead of ordering in.
`

const cannedChartJSON = "```json\n" + `{
  "category_spending": [{"category": "Food", "amount": 4500.50}],
  "top_merchants": [{"merchant": "Swiggy", "amount": "3,000.00"}],
  "credit_vs_debit": {"total_credit": 85000, "total_debit": 4500.50}
}` + "\n```"

func (c *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if strings.Contains(prompt, "JSON") {
		return cannedChartJSON, nil
	}
	return cannedAdvice, nil
}

type memRepo struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*analysis.Analysis
	charts   map[uuid.UUID][]byte
}

func newMemRepo() *memRepo {
	return &memRepo{
		analyses: make(map[uuid.UUID]*analysis.Analysis),
		charts:   make(map[uuid.UUID][]byte),
	}
}

func (m *memRepo) Create(ctx context.Context, a *analysis.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.CreatedAt = time.Now()
	m.analyses[a.ID] = a
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*analysis.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[id]
	if !ok {
		return nil, analysis.ErrNotFound
	}
	return a, nil
}

func (m *memRepo) List(ctx context.Context, limit int) ([]*analysis.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*analysis.Analysis, 0, len(m.analyses))
	for _, a := range m.analyses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) SetChartData(ctx context.Context, id uuid.UUID, chartJSON []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.analyses[id]; !ok {
		return analysis.ErrNotFound
	}
	m.charts[id] = chartJSON
	return nil
}

func (m *memRepo) ListOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.analyses, id)
	return nil
}

var extractedLines = []string{
	"UPI Statement",
	"Rahul Sharma",
	"HDFC Bank - Savings",
	"XXXX4821",
	"01 Mar 2025 - 31 Mar 2025",
	"Mar 02  Swiggy  -450.50",
	"Paid by 9876543210",
	"Mar 10  Salary  +85000.00",
}

func startApp(t *testing.T) (*httptest.Server, *scriptedClient) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	client := &scriptedClient{}

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	search, err := analysis.NewMemorySearch()
	require.NoError(t, err)
	t.Cleanup(func() { _ = search.Close() })

	advisorSvc := advisor.NewService(client, logger, 30*time.Second, 100, 100)

	svc := analysis.NewService(newMemRepo(), advisorSvc, files, search, "deepseek/deepseek-chat", logger).
		WithExtractor(func(data []byte) (*statement.Document, error) {
			return &statement.Document{PageCount: 1, Lines: extractedLines}, nil
		})

	srv, err := server.New(svc, report.NewTokenIssuer("e2e-secret", time.Hour), files, "session-secret", 5, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, client
}

func uploadStatement(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("statement", "march.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.7 fake statement"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/analyze", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := *ts.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/analyses/"))
	return location
}

func TestAnalyzeFlow(t *testing.T) {
	ts, client := startApp(t)

	location := uploadStatement(t, ts)

	t.Run("AdvicePage", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + location)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		html := string(body)

		assert.Contains(t, html, "<h2>Spending Summary</h2>")
		assert.Contains(t, html, "Ways to save ₹5,000/month")
		assert.Contains(t, html, "<table>") // GFM table survives rendering
	})

	t.Run("PIINeverReachesModel", func(t *testing.T) {
		client.mu.Lock()
		defer client.mu.Unlock()
		require.NotEmpty(t, client.prompts)
		for _, prompt := range client.prompts {
			assert.NotContains(t, prompt, "Rahul Sharma")
			assert.NotContains(t, prompt, "9876543210")
			assert.NotContains(t, prompt, "XXXX4821")
		}
	})

	t.Run("ChartsPage", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + location + "/charts")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Category-wise Spending")
		assert.Contains(t, string(body), "Credit vs Debit")
	})

	t.Run("ChartDataAPI", func(t *testing.T) {
		id := strings.TrimPrefix(location, "/analyses/")
		resp, err := ts.Client().Get(ts.URL + "/api/analyses/" + id + "/chart-data")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		// Quoted, comma-separated model amounts come back as clean numbers.
		assert.Contains(t, string(body), `"merchant":"Swiggy","amount":3000`)
	})

	t.Run("SignedReportDownload", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + location)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		idx := strings.Index(string(body), "/reports/")
		require.GreaterOrEqual(t, idx, 0)
		link := string(body)[idx:]
		link = link[:strings.IndexByte(link, '"')]

		dl, err := ts.Client().Get(ts.URL + link)
		require.NoError(t, err)
		defer dl.Body.Close()

		require.Equal(t, http.StatusOK, dl.StatusCode)
		doc, err := io.ReadAll(dl.Body)
		require.NoError(t, err)
		assert.Contains(t, string(doc), "font-family: Arial")
	})

	t.Run("CSVExport", func(t *testing.T) {
		id := strings.TrimPrefix(location, "/analyses/")
		resp, err := ts.Client().Get(ts.URL + "/analyses/" + id + "/export.csv")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Food,4500.5")
	})
}

func TestPastedTextCharts(t *testing.T) {
	ts, _ := startApp(t)

	resp, err := ts.Client().Post(ts.URL+"/charts", "application/x-www-form-urlencoded",
		strings.NewReader("cleaned_text=Mar+02++Swiggy++-450.50"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Category-wise Spending")
}
