package memoryservice

import (
	"strings"
	"testing"
)

func TestSnippet(t *testing.T) {
	cases := []struct {
		name, content, query, want string
	}{
		{"short no match", "hello world", "zzz", "hello world"},
		{"match at start", "Deploy now", "deploy", "Deploy now"},
		{"empty query", "abc", "", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Snippet(tc.content, tc.query); got != tc.want {
				t.Errorf("Snippet = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSnippet_LongNoMatchTruncates(t *testing.T) {
	got := Snippet(strings.Repeat("é", 250), "zzz")
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != 201 {
		t.Errorf("len = %d, got %q", len([]rune(got)), got)
	}
}

func TestSnippet_Window(t *testing.T) {
	content := strings.Repeat("a", 100) + "HIT" + strings.Repeat("b", 100)
	got := Snippet(content, "hit")
	want := "…" + strings.Repeat("a", 80) + "HIT" + strings.Repeat("b", 80) + "…"
	if got != want {
		t.Errorf("Snippet = %q, want %q", got, want)
	}
}

func TestRender(t *testing.T) {
	html, err := Render("**bold** ~~gone~~")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<strong>bold</strong>") || !strings.Contains(html, "<del>gone</del>") {
		t.Errorf("html = %q", html)
	}
	if !strings.HasPrefix(html, `<div class="markdown-body">`) {
		t.Errorf("missing wrapper: %q", html)
	}
}
