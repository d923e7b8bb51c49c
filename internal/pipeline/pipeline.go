// Package pipeline turns workspace markdown into redacted, tagged document
// records ready for upsert.
package pipeline

import (
	"context"
	"iter"

	"github.com/yuhungliao/mission-control/internal/models"
	"github.com/yuhungliao/mission-control/internal/parser"
	"github.com/yuhungliao/mission-control/internal/redact"
	"github.com/yuhungliao/mission-control/internal/storage"
)

// Document is the normalized record served by the export endpoint and
// written to the store.
type Document struct {
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Category   models.Category `json:"category"`
	WordCount  int             `json:"wordCount"`
	Tags       []string        `json:"tags"`
	SourceFile string          `json:"sourceFile"`
}

// Build derives a Document from a scanned file. Title, tags, and content come
// from the redacted text; word count comes from the raw text.
func Build(f storage.File, r *redact.Redactor, root string) Document {
	redacted := r.Redact(f.Content)
	res := parser.Parse(f.Name, f.RelPath, redacted)
	return Document{
		Slug:       res.Slug,
		Title:      res.Title,
		Content:    redacted,
		Category:   res.Category,
		WordCount:  parser.WordCount(f.Content),
		Tags:       res.Tags,
		SourceFile: storage.SanitizePath(f.AbsPath, root),
	}
}

// Documents lazily maps the provider scan to Documents. It stops with the
// context error when ctx is cancelled between files.
func Documents(ctx context.Context, p storage.Provider, r *redact.Redactor) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		root := p.Root()
		for f, err := range p.Scan() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield(Document{}, ctxErr)
				return
			}
			if err != nil {
				if !yield(Document{}, err) {
					return
				}
				continue
			}
			if !yield(Build(f, r, root), nil) {
				return
			}
		}
	}
}

// Collect drains Documents, failing on the first error.
func Collect(ctx context.Context, p storage.Provider, r *redact.Redactor) ([]Document, error) {
	out := []Document{}
	for doc, err := range Documents(ctx, p, r) {
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}
