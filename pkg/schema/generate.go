package schema

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// DraftURL identifies the dialect of generated schemas.
const DraftURL = "https://json-schema.org/draft/2020-12/schema"

// IDPrefix is prepended to the form ID to build each schema's $id.
const IDPrefix = "https://leadforms.local/schemas/"

// timestampPattern matches the UTC millisecond timestamps written on submit.
const timestampPattern = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`

// Generate returns the schema of an exported submission for form. Every
// descriptor key is required to be present because snapshots write blanks
// as empty strings; required fields must additionally be non-empty.
func Generate(form model.Form) map[string]any {
	properties := make(map[string]any, len(form.Fields)+1)
	required := make([]string, 0, len(form.Fields)+1)

	for _, field := range form.Fields {
		properties[field.Name] = fieldSchema(field)
		required = append(required, field.Name)
	}
	properties[model.SubmittedAtKey] = map[string]any{
		"type":        "string",
		"pattern":     timestampPattern,
		"description": "Submission time, UTC with milliseconds",
	}
	required = append(required, model.SubmittedAtKey)

	return map[string]any{
		"$schema":              DraftURL,
		"$id":                  IDPrefix + form.ID + ".json",
		"title":                form.Title,
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// Marshal renders the schema of form as indented JSON.
func Marshal(form model.Form) ([]byte, error) {
	data, err := json.MarshalIndent(Generate(form), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s: %w", form.ID, err)
	}
	return data, nil
}

func fieldSchema(field model.Field) map[string]any {
	out := map[string]any{
		"title":  field.Label,
		"x-kind": string(field.Kind),
	}
	if field.HelpText != "" {
		out["description"] = field.HelpText
	}

	switch field.Kind {
	case model.FieldKindNumber:
		// Browser submissions keep the raw input text.
		out["type"] = []any{"number", "string"}
	case model.FieldKindSelect:
		options := make([]any, 0, len(field.Options)+1)
		for _, option := range field.Options {
			options = append(options, option)
		}
		if !field.Required {
			options = append(options, "")
		}
		out["type"] = "string"
		out["enum"] = options
	case model.FieldKindDate:
		out["type"] = "string"
		out["format"] = "date"
	default:
		out["type"] = "string"
	}

	if field.Required {
		out["minLength"] = 1
	}
	return out
}
