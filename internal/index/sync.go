package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuhungliao/mission-control/internal/checksum"
	"github.com/yuhungliao/mission-control/internal/pipeline"
	"github.com/yuhungliao/mission-control/internal/redact"
	"github.com/yuhungliao/mission-control/internal/storage"
)

// Report summarizes one sync run.
type Report struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Total     int `json:"total"`
}

// Sync scans the workspace and upserts every document by slug. Records whose
// file has disappeared are left alone; removal is a separate operation.
// A file that cannot be read aborts the run; documents upserted before the
// failure stay written.
func Sync(ctx context.Context, db MemoryIndex, p storage.Provider, r *redact.Redactor, logger *slog.Logger) (Report, error) {
	var rep Report
	for doc, err := range pipeline.Documents(ctx, p, r) {
		if err != nil {
			return rep, fmt.Errorf("index: sync: %w", err)
		}
		_, res, err := db.Upsert(ctx, doc, checksum.Sum(doc.Content), time.Now())
		if err != nil {
			return rep, fmt.Errorf("index: sync %s: %w", doc.Slug, err)
		}
		switch res {
		case Created:
			rep.Created++
		case Updated:
			rep.Updated++
		default:
			rep.Unchanged++
		}
		rep.Total++
		logger.Debug("sync: upserted", slog.String("slug", doc.Slug), slog.String("result", res.String()))
	}
	logger.Info("sync: done",
		slog.Int("created", rep.Created),
		slog.Int("updated", rep.Updated),
		slog.Int("unchanged", rep.Unchanged),
	)
	return rep, nil
}
