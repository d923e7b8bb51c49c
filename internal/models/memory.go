// Package models defines the domain types for Mission Control.
package models

import (
	"slices"
	"time"
)

// Category groups memories by the kind of file they were synced from.
type Category string

// Memory categories.
const (
	CategoryCore      Category = "core"
	CategoryDaily     Category = "daily"
	CategoryReference Category = "reference"
)

// Categories lists every valid category.
var Categories = []Category{CategoryCore, CategoryDaily, CategoryReference}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Memory is a synced document as held by the searchable store.
type Memory struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   Category  `json:"category"`
	WordCount  int       `json:"wordCount"`
	Tags       []string  `json:"tags"`
	SourceFile string    `json:"sourceFile"`
	Checksum   string    `json:"checksum"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	SyncedAt   time.Time `json:"syncedAt"`
}
