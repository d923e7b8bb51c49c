package index

import (
	"context"
	"time"

	"github.com/yuhungliao/mission-control/internal/models"
	"github.com/yuhungliao/mission-control/internal/pipeline"
)

// MemoryIndex defines the memory store operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type MemoryIndex interface {
	Upsert(ctx context.Context, doc pipeline.Document, sum string, now time.Time) (string, UpsertResult, error)
	GetBySlug(ctx context.Context, slug string) (*models.Memory, error)
	Get(ctx context.Context, id string) (*models.Memory, error)
	List(ctx context.Context, category models.Category) ([]models.Memory, error)
	Search(ctx context.Context, query string, category models.Category, limit int) ([]models.Memory, error)
	Delete(ctx context.Context, slug string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Verify *DB satisfies MemoryIndex at compile time.
var _ MemoryIndex = (*DB)(nil)
