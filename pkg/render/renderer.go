package render

import (
	"context"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// Renderer turns a form definition plus per-request state into bytes (HTML
// pages, terminal transcripts, exported JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.Form, options RenderOptions) ([]byte, error)
}
