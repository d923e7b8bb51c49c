// Package storage reads markdown documents from the agent workspace.
package storage

import "iter"

// File is one markdown document found in the workspace.
type File struct {
	// Name is the base file name, e.g. "2026-02-21.md".
	Name string
	// RelPath is slash-separated and relative to the workspace root.
	RelPath string
	// AbsPath is the absolute location on disk. It must not leave the process.
	AbsPath string
	Content string
}

// Provider is the interface for workspace document access.
type Provider interface {
	// Root returns the absolute workspace root.
	Root() string
	// Scan lazily yields every syncable markdown file. Each call re-reads disk.
	Scan() iter.Seq2[File, error]
}
