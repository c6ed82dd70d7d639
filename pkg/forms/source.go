package forms

import (
	"sync/atomic"
)

// Source hands out the current catalog and lets a watcher swap it while
// requests are in flight.
type Source struct {
	current atomic.Pointer[Catalog]
}

// NewSource seeds a source with catalog. A nil catalog is replaced by an
// empty one.
func NewSource(catalog *Catalog) *Source {
	src := &Source{}
	src.Store(catalog)
	return src
}

// Catalog returns the active catalog.
func (s *Source) Catalog() *Catalog {
	if s == nil {
		return NewCatalog()
	}
	if catalog := s.current.Load(); catalog != nil {
		return catalog
	}
	return NewCatalog()
}

// Store replaces the active catalog.
func (s *Source) Store(catalog *Catalog) {
	if catalog == nil {
		catalog = NewCatalog()
	}
	s.current.Store(catalog)
}
