// Package mapdoc defines the in-memory map document model and the parser
// registry that dispatches document formats by file extension.
package mapdoc

import (
	"fmt"

	"github.com/imyousuf/TileSage/internal/tiled"
)

// Layer is a rectangular grid of decoded tile keys, indexed [row][col].
// Empty cells hold the zero Key.
type Layer struct {
	Name  string
	Cells [][]tiled.Key
}

// Document is a parsed map document: one or more layers sharing the same
// declared dimensions. Layers contribute to adjacency independently.
type Document struct {
	Name   string
	Width  int
	Height int
	Layers []Layer
}

// MalformedMapError reports a structural mismatch in a map document: row or
// column counts that disagree with the declared dimensions, or cell text
// that is not an unsigned integer. Row is -1 when the fault is not tied to
// a specific row.
type MalformedMapError struct {
	Document string
	Layer    string
	Row      int
	Reason   string
}

func (e *MalformedMapError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s: layer %q row %d: %s", e.Document, e.Layer, e.Row, e.Reason)
	}
	return fmt.Sprintf("%s: layer %q: %s", e.Document, e.Layer, e.Reason)
}

// Parser is the interface for document-format parsers.
type Parser interface {
	// Format returns the format name this parser handles.
	Format() string

	// Extensions returns the file extensions this parser can handle.
	Extensions() []string

	// Parse decodes the document content. name is used for error context
	// and becomes the Document name.
	Parse(name string, content []byte) (*Document, error)
}
