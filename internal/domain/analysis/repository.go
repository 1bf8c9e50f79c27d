package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for analysis persistence
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	List(ctx context.Context, limit int) ([]*Analysis, error)
	SetChartData(ctx context.Context, id uuid.UUID, chartJSON []byte) error
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
