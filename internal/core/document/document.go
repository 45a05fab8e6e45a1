// Package document defines the document domain: identity, backend
// capabilities, extracted page text, and the persisted per-document
// viewing state.
package document

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrPageOutOfRange is returned by page-indexed operations when the
// index is at or beyond the document's page count.
var ErrPageOutOfRange = errors.New("page index out of range")

// ErrUnsupported is returned by backends that do not implement an
// optional capability, such as text extraction.
var ErrUnsupported = errors.New("capability not supported")

// documentNamespace seeds the v5 UUIDs derived from document paths.
var documentNamespace = uuid.MustParse("7b2c58f1-99c6-5a5c-a6ea-50f9e7f1cc20")

// ID identifies a document across sessions. IDs are stable for a given
// file path, so persisted state survives restarts.
type ID = uuid.UUID

// IDForPath derives a stable document ID from the canonicalized file
// path. Resolution failures fall back to the absolute (or given) path
// so an unreadable file still gets a deterministic identity.
func IDForPath(path string) ID {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	if !filepath.IsAbs(resolved) {
		if cwd, err := os.Getwd(); err == nil {
			resolved = filepath.Join(cwd, resolved)
		}
	}
	return uuid.NewSHA1(documentNamespace, []byte(resolved))
}

// ParseID parses the string form of a document ID.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

// Metadata carries optional descriptive fields extracted from the
// document.
type Metadata struct {
	Title    string   `json:"title,omitempty"`
	Author   string   `json:"author,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Info describes an open document.
type Info struct {
	ID        ID
	Path      string
	PageCount int
	Metadata  Metadata
}

// OutlineItem is a single entry of the document's table of contents.
type OutlineItem struct {
	Title     string
	PageIndex int
	Depth     int
}

// RenderRequest asks a backend for one rasterized page.
type RenderRequest struct {
	PageIndex int
	Scale     float64
	DarkMode  bool
}

// RenderImage is a rasterized page in RGBA order,
// len(Pixels) == Width*Height*4.
type RenderImage struct {
	Width  int
	Height int
	Pixels []byte
}
