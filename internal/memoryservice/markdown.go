package memoryservice

import (
	"bytes"
	"fmt"
	"sync"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce     sync.Once
	markdownInstance goldmark.Markdown
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	})
	return markdownInstance
}

// Render converts markdown to HTML. Raw HTML in the source is not passed
// through.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("memoryservice: render: %w", err)
	}
	return `<div class="markdown-body">` + buf.String() + `</div>`, nil
}

const (
	snippetContext = 80
	snippetDefault = 200
	ellipsis       = "…"
)

// Snippet returns the text around the first case-insensitive occurrence of
// query with snippetContext runes on either side, marking cut ends with an
// ellipsis. Without a match it returns the leading snippetDefault runes.
func Snippet(content, query string) string {
	runes := []rune(content)
	idx := indexFold(runes, []rune(query))
	if idx < 0 || query == "" {
		if len(runes) <= snippetDefault {
			return content
		}
		return string(runes[:snippetDefault]) + ellipsis
	}

	start := max(0, idx-snippetContext)
	end := min(len(runes), idx+len([]rune(query))+snippetContext)
	out := string(runes[start:end])
	if start > 0 {
		out = ellipsis + out
	}
	if end < len(runes) {
		out += ellipsis
	}
	return out
}

// indexFold is a rune-index case-insensitive search.
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}
