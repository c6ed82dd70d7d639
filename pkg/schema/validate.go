package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// Issue is one validation failure. Field is empty for document-level issues.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of validating one document.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Validator checks documents against the compiled schema of one form.
type Validator struct {
	form   model.Form
	schema *jsonschema.Schema
}

// Compile builds a Validator for form.
func Compile(form model.Form) (*Validator, error) {
	raw, err := json.Marshal(Generate(form))
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s: %w", form.ID, err)
	}

	url := IDPrefix + form.ID + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema: add resource %s: %w", form.ID, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema: compile %s: %w", form.ID, err)
	}
	return &Validator{form: form.Clone(), schema: compiled}, nil
}

// Validate compiles the schema of form and checks data with it.
func Validate(form model.Form, data []byte) (Result, error) {
	validator, err := Compile(form)
	if err != nil {
		return Result{}, err
	}
	return validator.Validate(data), nil
}

// Validate checks raw JSON. Malformed JSON is reported as an issue.
func (v *Validator) Validate(data []byte) Result {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return Result{Issues: []Issue{{Message: "invalid JSON: " + err.Error()}}}
	}
	return v.ValidateValue(doc)
}

// ValidateValue checks an already decoded document.
func (v *Validator) ValidateValue(doc any) Result {
	err := v.schema.Validate(doc)
	if err == nil {
		return Result{Valid: true}
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return Result{Issues: []Issue{{Message: err.Error()}}}
	}

	var issues []Issue
	for _, leaf := range leaves(verr) {
		issues = append(issues, v.issuesFrom(leaf)...)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Field != issues[j].Field {
			return issues[i].Field < issues[j].Field
		}
		return issues[i].Message < issues[j].Message
	})
	return Result{Issues: issues}
}

var quotedName = regexp.MustCompile(`'([^']*)'`)

func (v *Validator) issuesFrom(err *jsonschema.ValidationError) []Issue {
	path := err.InstanceLocation
	field := fieldFromPointer(path)
	message := strings.TrimSpace(err.Message)

	if field == "" {
		// Root-level keywords name the offending properties in quotes.
		switch {
		case strings.HasPrefix(message, "missing properties"):
			return v.namedIssues(message, "is missing")
		case strings.HasPrefix(message, "additionalProperties"):
			return v.namedIssues(message, "is not a field of "+v.form.ID)
		}
		return []Issue{{Path: path, Message: message}}
	}

	if descriptor, ok := v.form.Field(field); ok && strings.HasSuffix(err.KeywordLocation, "/minLength") {
		message = descriptor.RequiredMessage
		if message == "" {
			message = model.DefaultRequiredMessage(descriptor.Label)
		}
	}
	return []Issue{{Path: path, Field: field, Message: message}}
}

func (v *Validator) namedIssues(message, suffix string) []Issue {
	matches := quotedName.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return []Issue{{Message: message}}
	}
	out := make([]Issue, 0, len(matches))
	for _, match := range matches {
		name := match[1]
		out = append(out, Issue{Path: "/" + name, Field: name, Message: name + " " + suffix})
	}
	return out
}

func leaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

// fieldFromPointer returns the top-level property named by a JSON pointer.
func fieldFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(pointer, "#"), "/")
	if trimmed == "" {
		return ""
	}
	segment, _, _ := strings.Cut(trimmed, "/")
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}
