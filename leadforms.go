// Package leadforms exposes the form catalog, engine and HTTP component
// through one import for applications embedding the forms.
package leadforms

import (
	"io/fs"

	"github.com/goliatone/go-leadforms/components/formserver"
	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/render"
	"github.com/goliatone/go-leadforms/pkg/renderers/vanilla"
)

// Form is a declarative form definition.
type Form = model.Form

// Field describes one input of a Form.
type Field = model.Field

// Snapshot is the exported record of an accepted submission.
type Snapshot = engine.Snapshot

// Export is a snapshot serialised for download.
type Export = engine.Export

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Builtin returns the catalog of the six bundled forms.
func Builtin() (*forms.Catalog, error) {
	return forms.Builtin()
}

// NewEngine builds a form engine for form.
func NewEngine(form Form, opts ...engine.Option) (*engine.Engine, error) {
	return engine.New(form, opts...)
}

// NewServer builds the HTTP component serving every form in the catalog.
//
// Typical mount:
//
//	srv, _ := leadforms.NewServer()
//	_, _ = srv.RegisterRoutes(mux, "/forms")
func NewServer(opts ...formserver.OptionFn) (*formserver.Component, error) {
	return formserver.New(opts...)
}

// EmbeddedTemplates exposes the built-in page templates so callers can
// extend them without importing the renderer package.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet and scripts the pages link to.
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
