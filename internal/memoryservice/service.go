// Package memoryservice coordinates the workspace, the redactor, and the
// memory store for the HTTP and MCP surfaces.
package memoryservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuhungliao/mission-control/internal/apperr"
	"github.com/yuhungliao/mission-control/internal/index"
	"github.com/yuhungliao/mission-control/internal/models"
	"github.com/yuhungliao/mission-control/internal/pipeline"
	"github.com/yuhungliao/mission-control/internal/redact"
	"github.com/yuhungliao/mission-control/internal/storage"
)

// SearchHit is a memory plus the text around the match.
type SearchHit struct {
	models.Memory
	Snippet string `json:"snippet"`
}

// Service coordinates workspace scanning and memory store operations.
type Service struct {
	store    storage.Provider
	db       index.MemoryIndex
	redactor *redact.Redactor
	logger   *slog.Logger
}

// NewService creates a new memory service.
func NewService(store storage.Provider, db index.MemoryIndex, redactor *redact.Redactor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, redactor: redactor, logger: logger}
}

// ParseCategory validates an optional category filter. The empty string
// means no filter.
func ParseCategory(s string) (models.Category, error) {
	c := models.Category(strings.TrimSpace(s))
	if c == "" || c.Valid() {
		return c, nil
	}
	return "", apperr.ErrInvalidCategory
}

// List returns stored memories, optionally limited to one category.
func (s *Service) List(ctx context.Context, category models.Category) ([]models.Memory, error) {
	if category != "" && !category.Valid() {
		return nil, apperr.ErrInvalidCategory
	}
	return s.db.List(ctx, category)
}

// Get returns the memory stored under slug.
func (s *Service) Get(ctx context.Context, slug string) (*models.Memory, error) {
	return s.db.GetBySlug(ctx, slug)
}

// GetByID returns the memory with the given record id.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	return s.db.Get(ctx, id)
}

// RenderHTML returns the memory under slug along with its content rendered
// as HTML.
func (s *Service) RenderHTML(ctx context.Context, slug string) (*models.Memory, string, error) {
	m, err := s.db.GetBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	body, err := Render(m.Content)
	if err != nil {
		return nil, "", fmt.Errorf("render %s: %w", slug, err)
	}
	return m, body, nil
}

// Search matches query against titles and content. An empty query lists
// every memory in the category.
func (s *Service) Search(ctx context.Context, query string, category models.Category, limit int) ([]SearchHit, error) {
	if category != "" && !category.Valid() {
		return nil, apperr.ErrInvalidCategory
	}
	query = strings.TrimSpace(query)

	var (
		found []models.Memory
		err   error
	)
	if query == "" {
		found, err = s.db.List(ctx, category)
		if err == nil && limit > 0 && len(found) > limit {
			found = found[:limit]
		}
	} else {
		found, err = s.db.Search(ctx, query, category, limit)
	}
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, len(found))
	for i, m := range found {
		hits[i] = SearchHit{Memory: m, Snippet: Snippet(m.Content, query)}
	}
	return hits, nil
}

// Delete removes the memory stored under slug. The workspace file is not
// touched, so the next sync recreates it.
func (s *Service) Delete(ctx context.Context, slug string) error {
	return s.db.Delete(ctx, slug)
}

// Sync runs the pipeline into the store.
func (s *Service) Sync(ctx context.Context) (index.Report, error) {
	return index.Sync(ctx, s.db, s.store, s.redactor, s.logger)
}

// Export scans the workspace and returns the redacted documents without
// touching the store.
func (s *Service) Export(ctx context.Context) ([]pipeline.Document, error) {
	return pipeline.Collect(ctx, s.store, s.redactor)
}

// Bootstrap syncs once when the store is empty. It reports whether a sync
// ran.
func (s *Service) Bootstrap(ctx context.Context) (bool, error) {
	n, err := s.db.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	rep, err := s.Sync(ctx)
	if err != nil {
		return false, err
	}
	s.logger.Info("bootstrap: store populated", slog.Int("total", rep.Total))
	return true, nil
}
