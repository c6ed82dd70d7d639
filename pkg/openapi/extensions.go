package openapi

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// ExtensionKey namespaces descriptor metadata inside OpenAPI objects.
const ExtensionKey = "x-formgen"

// FormExtension rides on each submission operation.
type FormExtension struct {
	ID             string             `json:"id"`
	Title          string             `json:"title,omitempty"`
	Subtitle       string             `json:"subtitle,omitempty"`
	Route          string             `json:"route"`
	SuccessMessage string             `json:"successMessage,omitempty"`
	Order          int                `json:"order,omitempty"`
	FlashMillis    int                `json:"flashMillis,omitempty"`
	Filename       model.FilenameRule `json:"filename"`
	Sections       []model.Section    `json:"sections,omitempty"`
	// Fields preserves declaration order, which schema properties lose.
	Fields []string `json:"fields"`
}

// FieldExtension rides on each property of a request schema.
type FieldExtension struct {
	Kind            model.FieldKind   `json:"kind"`
	Section         string            `json:"section,omitempty"`
	RequiredMessage string            `json:"requiredMessage,omitempty"`
	Placeholder     string            `json:"placeholder,omitempty"`
	Rows            int               `json:"rows,omitempty"`
	Span            int               `json:"span,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

func formExtension(form model.Form) FormExtension {
	return FormExtension{
		ID:             form.ID,
		Title:          form.Title,
		Subtitle:       form.Subtitle,
		Route:          form.Route,
		SuccessMessage: form.SuccessMessage,
		Order:          form.Order,
		FlashMillis:    form.FlashMillis,
		Filename:       form.Filename,
		Sections:       form.Sections,
		Fields:         form.FieldNames(),
	}
}

func fieldExtension(field model.Field) FieldExtension {
	return FieldExtension{
		Kind:            field.Kind,
		Section:         field.Section,
		RequiredMessage: field.RequiredMessage,
		Placeholder:     field.Placeholder,
		Rows:            field.Rows,
		Span:            field.Span,
		Metadata:        field.Metadata,
	}
}

// decodeExtension reads an extension value that the OpenAPI loader left as
// generic JSON.
func decodeExtension(extensions map[string]any, target any) (bool, error) {
	raw, ok := extensions[ExtensionKey]
	if !ok || raw == nil {
		return false, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false, fmt.Errorf("openapi: encode %s: %w", ExtensionKey, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("openapi: decode %s: %w", ExtensionKey, err)
	}
	return true, nil
}
