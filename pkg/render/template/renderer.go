package template

import (
	"io"
)

// TemplateRenderer executes a named template with view data. Output is
// returned and also copied to every writer in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
