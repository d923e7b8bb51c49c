// Package parser derives titles, categories, tags, and word counts from
// workspace markdown. Nothing here touches the filesystem.
package parser

import (
	"path"
	"regexp"
	"strings"

	"github.com/yuhungliao/mission-control/internal/models"
)

const (
	maxTags      = 5
	maxTagLength = 30
	mdExt        = ".md"
)

var (
	h1Re       = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	h2Re       = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	dailyRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.md$`)
	emphasisRe = regexp.MustCompile("[*_`]")
	tagCharsRe = regexp.MustCompile(`[^a-z0-9\s-]`)
)

// coreFilenames are the workspace identity files.
var coreFilenames = map[string]struct{}{
	"MEMORY.md":   {},
	"SOUL.md":     {},
	"IDENTITY.md": {},
}

// Result holds everything derived from one markdown file.
type Result struct {
	Slug      string
	Title     string
	Category  models.Category
	Tags      []string
	WordCount int
}

// Parse derives all document fields. filename is the base name, relPath the
// slash-separated path relative to the workspace root.
func Parse(filename, relPath, content string) Result {
	return Result{
		Slug:      Slug(relPath),
		Title:     ExtractTitle(filename, content),
		Category:  Classify(filename),
		Tags:      ExtractTags(content),
		WordCount: WordCount(content),
	}
}

// Classify maps a filename to its category. Identity files win over the
// daily pattern, which wins over the reference fallback.
func Classify(filename string) models.Category {
	if _, ok := coreFilenames[filename]; ok {
		return models.CategoryCore
	}
	if dailyRe.MatchString(filename) {
		return models.CategoryDaily
	}
	return models.CategoryReference
}

// ExtractTitle returns the first H1 heading without emphasis markers, or the
// filename without its extension.
func ExtractTitle(filename, content string) string {
	if m := h1Re.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(emphasisRe.ReplaceAllString(m[1], ""))
	}
	return strings.TrimSuffix(filename, mdExt)
}

// ExtractTags turns the first five H2 headings into slug-shaped tags,
// deduplicated in document order.
func ExtractTags(content string) []string {
	matches := h2Re.FindAllStringSubmatch(content, maxTags)
	seen := make(map[string]struct{}, len(matches))
	out := []string{}
	for _, m := range matches {
		tag := tagCharsRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(m[1])), "")
		if len(tag) > maxTagLength {
			tag = tag[:maxTagLength]
		}
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// WordCount counts whitespace-delimited tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// Slug is the upsert key: the relative path without the markdown extension.
func Slug(relPath string) string {
	return strings.TrimSuffix(path.Clean(strings.ReplaceAll(relPath, `\`, "/")), mdExt)
}
