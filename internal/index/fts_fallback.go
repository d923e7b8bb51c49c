//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yuhungliao/mission-control/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the memories table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error {
	// Content is already stored in the memories table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// match performs a case-insensitive substring match on one field.
func (db *DB) match(ctx context.Context, field searchField, query string, category models.Category, limit int) ([]models.Memory, error) {
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+memoryColumns+`
		FROM memories
		WHERE `+string(field)+` LIKE ? ESCAPE '\'
		  AND (? = '' OR category = ?)
		ORDER BY updated_at DESC
		LIMIT ?
	`, like, string(category), string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search %s: %w", field, err)
	}
	return scanMemories(rows)
}
