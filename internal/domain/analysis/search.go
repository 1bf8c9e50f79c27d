package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
)

// Search maintains a full-text index over stored analyses so the history
// page can find past statements by merchant, category or advice text.
type Search struct {
	index bleve.Index
}

// searchDoc is the indexed projection of an analysis.
type searchDoc struct {
	Filename    string    `json:"filename"`
	CleanedText string    `json:"cleaned_text"`
	Advice      string    `json:"advice"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSearch opens the index at path, creating it on first run.
func NewSearch(path string) (*Search, error) {
	index, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		index, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	return &Search{index: index}, nil
}

// NewMemorySearch creates an in-memory index, used in tests.
func NewMemorySearch() (*Search, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Search{index: index}, nil
}

// Index adds or replaces an analysis in the index.
func (s *Search) Index(a *Analysis) error {
	doc := searchDoc{
		Filename:    a.Filename,
		CleanedText: a.CleanedText,
		Advice:      a.AdviceMarkdown,
		CreatedAt:   a.CreatedAt,
	}
	if err := s.index.Index(a.ID.String(), doc); err != nil {
		return fmt.Errorf("failed to index analysis: %w", err)
	}
	return nil
}

// Delete removes an analysis from the index.
func (s *Search) Delete(id uuid.UUID) error {
	if err := s.index.Delete(id.String()); err != nil {
		return fmt.Errorf("failed to remove analysis from index: %w", err)
	}
	return nil
}

// Find returns IDs of analyses matching the query string, best first.
func (s *Search) Find(query string, limit int) ([]uuid.UUID, error) {
	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(query))
	req.Size = limit

	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Close releases the index.
func (s *Search) Close() error {
	return s.index.Close()
}
