package index

import (
	"context"

	"github.com/yuhungliao/mission-control/internal/models"
)

const defaultSearchLimit = 20

// Search returns memories whose title or content matches query, title hits
// first, each memory at most once. An empty category searches everything.
func (db *DB) Search(ctx context.Context, query string, category models.Category, limit int) ([]models.Memory, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	byTitle, err := db.match(ctx, titleField, query, category, limit)
	if err != nil {
		return nil, err
	}
	byContent, err := db.match(ctx, contentField, query, category, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(byTitle)+len(byContent))
	out := make([]models.Memory, 0, len(byTitle))
	for _, group := range [][]models.Memory{byTitle, byContent} {
		for _, m := range group {
			if len(out) == limit {
				return out, nil
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

type searchField string

const (
	titleField   searchField = "title"
	contentField searchField = "content"
)
