package analysis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearch(t *testing.T) *Search {
	t.Helper()
	s, err := NewMemorySearch()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSearch_FindByMerchant(t *testing.T) {
	s := newTestSearch(t)

	swiggy := &Analysis{
		ID:          uuid.New(),
		Filename:    "march.pdf",
		CleanedText: "Mar 02 Swiggy -450.50\nMar 05 Zomato -320.00",
		CreatedAt:   time.Now(),
	}
	rent := &Analysis{
		ID:          uuid.New(),
		Filename:    "feb.pdf",
		CleanedText: "Feb 01 Rent transfer -15000.00",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.Index(swiggy))
	require.NoError(t, s.Index(rent))

	ids, err := s.Find("swiggy", 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{swiggy.ID}, ids)
}

func TestSearch_FindInAdvice(t *testing.T) {
	s := newTestSearch(t)

	a := &Analysis{
		ID:             uuid.New(),
		Filename:       "march.pdf",
		CleanedText:    "Mar 02 Swiggy -450.50",
		AdviceMarkdown: "Cut back on food delivery subscriptions.",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, s.Index(a))

	ids, err := s.Find("subscriptions", 10)
	require.NoError(t, err)
	assert.Contains(t, ids, a.ID)
}

func TestSearch_DeleteRemovesFromResults(t *testing.T) {
	s := newTestSearch(t)

	a := &Analysis{
		ID:          uuid.New(),
		Filename:    "march.pdf",
		CleanedText: "Mar 02 Swiggy -450.50",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.Index(a))
	require.NoError(t, s.Delete(a.ID))

	ids, err := s.Find("swiggy", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch_LimitRespected(t *testing.T) {
	s := newTestSearch(t)

	for i := 0; i < 5; i++ {
		a := &Analysis{
			ID:          uuid.New(),
			Filename:    "statement.pdf",
			CleanedText: "Mar 02 Swiggy -450.50",
			CreatedAt:   time.Now(),
		}
		require.NoError(t, s.Index(a))
	}

	ids, err := s.Find("swiggy", 3)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}
