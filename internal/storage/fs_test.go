package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempWorkspace(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, fs
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, fs *FS) []File {
	t.Helper()
	var out []File
	for f, err := range fs.Scan() {
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		out = append(out, f)
	}
	return out
}

func TestScan_TopLevelThenMemory(t *testing.T) {
	dir, s := tempWorkspace(t)
	writeFile(t, dir, "USER.md", "# User")
	writeFile(t, dir, "MEMORY.md", "# Memory")
	writeFile(t, dir, "notes.txt", "not markdown")
	writeFile(t, dir, "memory/2026-02-21.md", "# Day")
	writeFile(t, dir, "memory/archive/old.md", "nested dirs are not scanned")
	writeFile(t, dir, "projects/plan.md", "other dirs are not scanned")

	files := collect(t, s)
	var got []string
	for _, f := range files {
		got = append(got, f.RelPath)
	}
	want := []string{"MEMORY.md", "USER.md", "memory/2026-02-21.md"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("scanned = %v, want %v", got, want)
	}
	if files[2].Name != "2026-02-21.md" || files[2].Content != "# Day" {
		t.Errorf("unexpected file: %+v", files[2])
	}
	if !filepath.IsAbs(files[0].AbsPath) {
		t.Errorf("AbsPath should be absolute, got %q", files[0].AbsPath)
	}
}

func TestScan_NoMemoryDir(t *testing.T) {
	dir, s := tempWorkspace(t)
	writeFile(t, dir, "SOUL.md", "soul")
	if n := len(collect(t, s)); n != 1 {
		t.Errorf("len = %d, want 1", n)
	}
}

func TestScan_MemoryIsAFile(t *testing.T) {
	dir, s := tempWorkspace(t)
	writeFile(t, dir, "memory", "just a file")
	if n := len(collect(t, s)); n != 0 {
		t.Errorf("len = %d, want 0", n)
	}
}

func TestScan_ReadsFreshEachCall(t *testing.T) {
	dir, s := tempWorkspace(t)
	writeFile(t, dir, "a.md", "one")
	if n := len(collect(t, s)); n != 1 {
		t.Fatalf("len = %d, want 1", n)
	}
	writeFile(t, dir, "b.md", "two")
	if n := len(collect(t, s)); n != 2 {
		t.Errorf("len after new file = %d, want 2", n)
	}
}

func TestScan_StopsEarly(t *testing.T) {
	dir, s := tempWorkspace(t)
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "b.md", "b")
	seen := 0
	for range s.Scan() {
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("seen = %d, want 1", seen)
	}
}

func TestScan_MissingRootYieldsError(t *testing.T) {
	dir, s := tempWorkspace(t)
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	var gotErr error
	for _, err := range s.Scan() {
		gotErr = err
	}
	if gotErr == nil {
		t.Error("expected error for missing workspace")
	}
}

func TestTraversalBlocked(t *testing.T) {
	_, s := tempWorkspace(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		if _, err := s.safePath(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/mission-control-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "mission-control-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestSanitizePath(t *testing.T) {
	cases := []struct {
		abs, root, want string
	}{
		{"/Users/x/workspace/memory/2026-01-01.md", "/Users/x/workspace", "memory/2026-01-01.md"},
		{"/Users/x/workspace/memory/2026-01-01.md", "/Users/x/workspace/", "memory/2026-01-01.md"},
		{"/Users/x/workspace/MEMORY.md", "/Users/x/workspace", "MEMORY.md"},
		{"/Users/x/workspace-other/secret.md", "/Users/x/workspace", "secret.md"},
		{"/elsewhere/notes.md", "/Users/x/workspace", "notes.md"},
	}
	for _, c := range cases {
		got := SanitizePath(c.abs, c.root)
		if got != c.want {
			t.Errorf("SanitizePath(%q, %q) = %q, want %q", c.abs, c.root, got, c.want)
		}
		if strings.HasPrefix(got, "/") || strings.Contains(got, "Users") {
			t.Errorf("SanitizePath leaked root: %q", got)
		}
	}
}
