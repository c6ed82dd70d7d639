package forms

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed definitions/*.yaml
var definitionFS embed.FS

var (
	builtinOnce    sync.Once
	builtinCatalog *Catalog
	builtinErr     error
)

// DefinitionsFS exposes the embedded definition files rooted at the
// definitions directory.
func DefinitionsFS() fs.FS {
	sub, err := fs.Sub(definitionFS, "definitions")
	if err != nil {
		return definitionFS
	}
	return sub
}

// Builtin returns the catalog of the six lead and tender forms shipped with
// the module. The embedded files are parsed once.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtinCatalog, builtinErr = LoadFS(DefinitionsFS())
	})
	return builtinCatalog, builtinErr
}

// MustBuiltin panics when the embedded definitions fail to load.
func MustBuiltin() *Catalog {
	catalog, err := Builtin()
	if err != nil {
		panic(err)
	}
	return catalog
}
