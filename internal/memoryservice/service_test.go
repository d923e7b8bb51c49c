package memoryservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yuhungliao/mission-control/internal/apperr"
	"github.com/yuhungliao/mission-control/internal/models"
	"github.com/yuhungliao/mission-control/internal/redact"
	"github.com/yuhungliao/mission-control/internal/testutil"
)

func testService(t *testing.T) (*Service, string) {
	t.Helper()
	dir, store := testutil.TestWorkspace(t)
	db := testutil.TestDB(t)
	return NewService(store, db, redact.New(), testutil.Logger()), dir
}

func TestBootstrap_OnlyWhenEmpty(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "MEMORY.md", "# Memory\nhello")

	ran, err := svc.Bootstrap(ctx)
	if err != nil || !ran {
		t.Fatalf("first Bootstrap = %v, %v; want true", ran, err)
	}
	ran, err = svc.Bootstrap(ctx)
	if err != nil || ran {
		t.Fatalf("second Bootstrap = %v, %v; want false", ran, err)
	}
}

func TestSyncListGet(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "MEMORY.md", "# Memory\ncore")
	testutil.WriteFile(t, dir, "memory/2026-02-21.md", "# Friday\ndaily")

	rep, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if rep.Created != 2 {
		t.Errorf("report = %+v", rep)
	}

	all, err := svc.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("List = %d, %v", len(all), err)
	}
	daily, _ := svc.List(ctx, models.CategoryDaily)
	if len(daily) != 1 || daily[0].Slug != "memory/2026-02-21" {
		t.Errorf("daily = %+v", daily)
	}

	m, err := svc.Get(ctx, "MEMORY")
	if err != nil || m.Title != "Memory" {
		t.Fatalf("Get = %+v, %v", m, err)
	}
	byID, err := svc.GetByID(ctx, m.ID)
	if err != nil || byID.Slug != "MEMORY" {
		t.Errorf("GetByID = %+v, %v", byID, err)
	}
}

func TestList_InvalidCategory(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.List(context.Background(), "secret"); !errors.Is(err, apperr.ErrInvalidCategory) {
		t.Errorf("err = %v, want ErrInvalidCategory", err)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(""); err != nil || c != "" {
		t.Errorf("empty = %q, %v", c, err)
	}
	if c, err := ParseCategory("daily"); err != nil || c != models.CategoryDaily {
		t.Errorf("daily = %q, %v", c, err)
	}
	if _, err := ParseCategory("bogus"); !errors.Is(err, apperr.ErrInvalidCategory) {
		t.Errorf("bogus err = %v", err)
	}
}

func TestRenderHTML(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "TOOLS.md", "# Tools\n\n- [x] done\n\n<script>alert(1)</script>\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if _, err := svc.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	m, html, err := svc.RenderHTML(ctx, "TOOLS")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if m.Title != "Tools" {
		t.Errorf("title = %q", m.Title)
	}
	for _, want := range []string{"<h1>Tools</h1>", "<table>", `type="checkbox"`} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Error("raw HTML passed through")
	}

	if _, _, err := svc.RenderHTML(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestSearch_Snippets(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	body := strings.Repeat("x", 100) + " Needle " + strings.Repeat("y", 100)
	testutil.WriteFile(t, dir, "NOTES.md", body)
	testutil.WriteFile(t, dir, "OTHER.md", "nothing relevant")
	if _, err := svc.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	hits, err := svc.Search(ctx, "needle", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Slug != "NOTES" {
		t.Fatalf("hits = %+v", hits)
	}
	snip := hits[0].Snippet
	if !strings.HasPrefix(snip, "…") || !strings.HasSuffix(snip, "…") || !strings.Contains(snip, "Needle") {
		t.Errorf("snippet = %q", snip)
	}
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "A.md", "a")
	testutil.WriteFile(t, dir, "B.md", "b")
	testutil.WriteFile(t, dir, "C.md", "c")
	if _, err := svc.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	hits, err := svc.Search(ctx, "  ", "", 0)
	if err != nil || len(hits) != 3 {
		t.Fatalf("hits = %d, %v", len(hits), err)
	}
	limited, _ := svc.Search(ctx, "", "", 2)
	if len(limited) != 2 {
		t.Errorf("limited = %d, want 2", len(limited))
	}
}

func TestDelete(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "GONE.md", "bye")
	if _, err := svc.Sync(ctx); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "GONE"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "GONE"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestExport_DoesNotWriteStore(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "MEMORY.md", "# M\nserver 192.168.1.10")

	docs, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(docs) != 1 || strings.Contains(docs[0].Content, "192.168.1.10") {
		t.Errorf("docs = %+v", docs)
	}
	all, _ := svc.List(ctx, "")
	if len(all) != 0 {
		t.Errorf("export wrote %d memories", len(all))
	}
}
