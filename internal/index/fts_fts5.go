//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yuhungliao/mission-control/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
			slug UNINDEXED,
			title,
			content,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, slug, title, content string, tags []string) error {
	if err := ftsDelete(tx, slug); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO memories_fts (slug, title, content, tags) VALUES (?, ?, ?, ?)`,
		slug, title, content, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, slug string) error {
	if _, err := tx.Exec(`DELETE FROM memories_fts WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// ftsPhrase quotes user input as a single FTS5 phrase so operators in it are
// matched literally.
func ftsPhrase(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}

// match runs an FTS5 query restricted to one column, best rank first.
func (db *DB) match(ctx context.Context, field searchField, query string, category models.Category, limit int) ([]models.Memory, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Memory{}, nil
	}
	cols := "m." + strings.ReplaceAll(memoryColumns, ", ", ", m.")
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+cols+`
		FROM memories_fts
		JOIN memories m ON m.slug = memories_fts.slug
		WHERE memories_fts MATCH ?
		  AND (? = '' OR m.category = ?)
		ORDER BY memories_fts.rank
		LIMIT ?
	`, string(field)+" : "+ftsPhrase(query), string(category), string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search %s: %w", field, err)
	}
	return scanMemories(rows)
}
