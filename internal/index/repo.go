package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yuhungliao/mission-control/internal/apperr"
	"github.com/yuhungliao/mission-control/internal/models"
	"github.com/yuhungliao/mission-control/internal/pipeline"
)

// UpsertResult says what an Upsert did to the stored record.
type UpsertResult int

const (
	Created UpsertResult = iota
	Updated
	Unchanged
)

func (r UpsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

const memoryColumns = `id, slug, title, content, category, word_count, tags, source_file, checksum, created_at, updated_at, synced_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(s rowScanner) (models.Memory, error) {
	var (
		m    models.Memory
		tags string
	)
	err := s.Scan(&m.ID, &m.Slug, &m.Title, &m.Content, &m.Category, &m.WordCount,
		&tags, &m.SourceFile, &m.Checksum, &m.CreatedAt, &m.UpdatedAt, &m.SyncedAt)
	if err != nil {
		return models.Memory{}, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil || m.Tags == nil {
		m.Tags = []string{}
	}
	return m, nil
}

func scanMemories(rows *sql.Rows) ([]models.Memory, error) {
	defer rows.Close()
	out := []models.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan memory: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Upsert writes doc keyed by its slug. An existing record keeps its id and
// created_at; every other field plus updated_at and synced_at is replaced.
// sum is compared with the stored checksum only to report Unchanged.
func (db *DB) Upsert(ctx context.Context, doc pipeline.Document, sum string, now time.Time) (string, UpsertResult, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)
	now = now.UTC()

	var id, prevSum string
	err = tx.QueryRowContext(ctx, `SELECT id, checksum FROM memories WHERE slug = ?`, doc.Slug).Scan(&id, &prevSum)
	var result UpsertResult
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		result = Created
		_, err = tx.ExecContext(ctx, `
			INSERT INTO memories (`+memoryColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, doc.Slug, doc.Title, doc.Content, string(doc.Category), doc.WordCount,
			string(tagsJSON), doc.SourceFile, sum, now, now, now)
		if err != nil {
			return "", 0, fmt.Errorf("index: insert memory: %w", err)
		}
	case err != nil:
		return "", 0, fmt.Errorf("index: lookup slug: %w", err)
	default:
		result = Updated
		if prevSum == sum {
			result = Unchanged
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE memories SET
				title       = ?,
				content     = ?,
				category    = ?,
				word_count  = ?,
				tags        = ?,
				source_file = ?,
				checksum    = ?,
				updated_at  = ?,
				synced_at   = ?
			WHERE id = ?
		`, doc.Title, doc.Content, string(doc.Category), doc.WordCount,
			string(tagsJSON), doc.SourceFile, sum, now, now, id)
		if err != nil {
			return "", 0, fmt.Errorf("index: update memory: %w", err)
		}
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, doc.Slug, doc.Title, doc.Content, tags); err != nil {
		return "", 0, err
	}
	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("index: commit: %w", err)
	}
	return id, result, nil
}

// GetBySlug returns the memory stored under slug, or apperr.ErrNotFound.
func (db *DB) GetBySlug(ctx context.Context, slug string) (*models.Memory, error) {
	return db.getOne(ctx, `SELECT `+memoryColumns+` FROM memories WHERE slug = ?`, slug)
}

// Get returns the memory with the given id, or apperr.ErrNotFound.
func (db *DB) Get(ctx context.Context, id string) (*models.Memory, error) {
	return db.getOne(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id)
}

func (db *DB) getOne(ctx context.Context, query string, arg string) (*models.Memory, error) {
	m, err := scanMemory(db.conn.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get memory: %w", err)
	}
	return &m, nil
}

// List returns memories ordered by category, most recently updated first
// within a category. An empty category lists everything.
func (db *DB) List(ctx context.Context, category models.Category) ([]models.Memory, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+memoryColumns+`
		FROM memories
		WHERE (? = '' OR category = ?)
		ORDER BY category, updated_at DESC
	`, string(category), string(category))
	if err != nil {
		return nil, fmt.Errorf("index: list: %w", err)
	}
	return scanMemories(rows)
}

// Delete removes the memory stored under slug.
func (db *DB) Delete(ctx context.Context, slug string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("index: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsDelete(tx, slug); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of stored memories.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM memories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
