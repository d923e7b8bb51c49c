package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yuhungliao/mission-control/internal/redact"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileSynced(t *testing.T) {
	dir, p := testWorkspace(t)
	db := testDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var reports []Report
	go Watch(ctx, db, p, redact.New(), discardLogger(), func(rep Report, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		reports = append(reports, rep)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	writeFile(t, dir, "MEMORY.md", "# New")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := db.GetBySlug(context.Background(), "MEMORY")
		return err == nil
	}, "new file not synced by watcher")

	mu.Lock()
	defer mu.Unlock()
	if len(reports) == 0 || reports[0].Created != 1 {
		t.Errorf("reports = %+v", reports)
	}
}

func TestWatcher_MemoryDirCreatedLater(t *testing.T) {
	dir, p := testWorkspace(t)
	db := testDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, p, redact.New(), discardLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	writeFile(t, dir, "memory/2026-02-21.md", "# Friday")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := db.GetBySlug(context.Background(), "memory/2026-02-21")
		return err == nil
	}, "file in new memory dir not synced")
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	_, p := testWorkspace(t)
	db := testDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, db, p, redact.New(), discardLogger(), nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
