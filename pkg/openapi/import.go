package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/model"
)

// ErrNoForms is returned when a document has no operation with a JSON
// object request body.
var ErrNoForms = errors.New("openapi: document does not describe any forms")

// ImportForms converts each operation that accepts a JSON object into a form
// definition. Documents produced by Describe round-trip exactly; other
// documents get labels, kinds and routes inferred from their schemas.
func ImportForms(ctx context.Context, raw []byte, opts ...forms.LoadOption) (*forms.Catalog, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}

	list, err := collectForms(doc)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoForms
	}
	return forms.FromForms(list, opts...)
}

// ImportSource loads a document through loader and imports it.
func ImportSource(ctx context.Context, loader *Loader, src Source, opts ...forms.LoadOption) (*forms.Catalog, error) {
	if loader == nil {
		loader = NewLoader()
	}
	raw, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return ImportForms(ctx, raw, opts...)
}

func collectForms(doc *openapi3.T) ([]model.Form, error) {
	if doc.Paths == nil {
		return nil, nil
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for key := range paths {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []model.Form
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{item.Post, item.Put, item.Patch} {
			schema := requestSchema(op)
			if schema == nil {
				continue
			}
			form, err := convertOperation(path, op, schema)
			if err != nil {
				return nil, err
			}
			out = append(out, form)
		}
	}
	return out, nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	schema := media.Schema.Value
	if schema.Type == nil || !schema.Type.Is(openapi3.TypeObject) || len(schema.Properties) == 0 {
		return nil
	}
	return schema
}

func convertOperation(path string, op *openapi3.Operation, schema *openapi3.Schema) (model.Form, error) {
	var ext FormExtension
	hasExt, err := decodeExtension(op.Extensions, &ext)
	if err != nil {
		return model.Form{}, fmt.Errorf("openapi: %s: %w", path, err)
	}

	form := model.Form{
		ID:             firstNonEmpty(ext.ID, strings.TrimPrefix(op.OperationID, "submit-"), slug(path)),
		Title:          firstNonEmpty(ext.Title, strings.TrimPrefix(op.Summary, "Submit ")),
		Subtitle:       firstNonEmpty(ext.Subtitle, op.Description),
		SuccessMessage: ext.SuccessMessage,
		Order:          ext.Order,
		FlashMillis:    ext.FlashMillis,
		Filename:       ext.Filename,
		Sections:       ext.Sections,
	}
	form.Route = firstNonEmpty(ext.Route, "/"+form.ID)

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	order := ext.Fields
	if !hasExt || len(order) == 0 {
		order = make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	for _, name := range order {
		ref, ok := schema.Properties[name]
		if !ok || ref == nil || ref.Value == nil {
			return model.Form{}, fmt.Errorf("openapi: %s: field %q has no schema", path, name)
		}
		field, err := convertProperty(name, ref.Value, required[name])
		if err != nil {
			return model.Form{}, fmt.Errorf("openapi: %s: %w", path, err)
		}
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

func convertProperty(name string, schema *openapi3.Schema, required bool) (model.Field, error) {
	var ext FieldExtension
	if _, err := decodeExtension(schema.Extensions, &ext); err != nil {
		return model.Field{}, fmt.Errorf("field %q: %w", name, err)
	}

	field := model.Field{
		Name:            name,
		Label:           schema.Title,
		Kind:            ext.Kind,
		Required:        required,
		RequiredMessage: ext.RequiredMessage,
		Section:         ext.Section,
		Placeholder:     ext.Placeholder,
		HelpText:        schema.Description,
		Rows:            ext.Rows,
		Span:            ext.Span,
		Metadata:        ext.Metadata,
	}
	if field.Kind == "" {
		field.Kind = inferKind(schema)
	}
	if field.Kind == model.FieldKindSelect {
		for _, value := range schema.Enum {
			option := fmt.Sprint(value)
			if option == "" {
				continue
			}
			field.Options = append(field.Options, option)
		}
	}
	return field, nil
}

func inferKind(schema *openapi3.Schema) model.FieldKind {
	switch {
	case len(schema.Enum) > 0:
		return model.FieldKindSelect
	case schema.Type != nil && (schema.Type.Is(openapi3.TypeNumber) || schema.Type.Is(openapi3.TypeInteger)):
		return model.FieldKindNumber
	case schema.Format == "date":
		return model.FieldKindDate
	case schema.Format == "date-time":
		return model.FieldKindDateTime
	case schema.MaxLength != nil && *schema.MaxLength > 255:
		return model.FieldKindMultiline
	default:
		return model.FieldKindText
	}
}

func slug(path string) string {
	trimmed := strings.Trim(path, "/")
	trimmed = strings.NewReplacer("/", "-", "{", "", "}", "").Replace(trimmed)
	if trimmed == "" {
		return "form"
	}
	return trimmed
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
