package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// SubmissionsPath returns the JSON submission endpoint of a form.
func SubmissionsPath(id string) string {
	return "/api/forms/" + id + "/submissions"
}

// SubmitOperationID names the submission operation of a form.
func SubmitOperationID(id string) string {
	return "submit-" + id
}

// Lister is satisfied by forms.Catalog and forms.Source snapshots.
type Lister interface {
	List() []model.Form
}

// DescribeOption configures Describe.
type DescribeOption func(*describeConfig)

type describeConfig struct {
	title     string
	version   string
	serverURL string
}

// WithTitle sets info.title.
func WithTitle(title string) DescribeOption {
	return func(cfg *describeConfig) {
		if title != "" {
			cfg.title = title
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) DescribeOption {
	return func(cfg *describeConfig) {
		if version != "" {
			cfg.version = version
		}
	}
}

// WithServerURL adds a server entry.
func WithServerURL(url string) DescribeOption {
	return func(cfg *describeConfig) {
		cfg.serverURL = url
	}
}

// Describe builds and validates the API document for every listed form.
func Describe(ctx context.Context, forms Lister, options ...DescribeOption) (*openapi3.T, error) {
	cfg := describeConfig{title: "Lead Forms API", version: "1.0.0"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: cfg.title, Version: cfg.version},
		Paths:   openapi3.NewPaths(),
	}
	if cfg.serverURL != "" {
		doc.Servers = openapi3.Servers{{URL: cfg.serverURL}}
	}

	var list []model.Form
	if forms != nil {
		list = forms.List()
	}

	doc.Paths.Set("/api/forms", &openapi3.PathItem{Get: listOperation()})
	for _, form := range list {
		doc.Paths.Set(SubmissionsPath(form.ID), &openapi3.PathItem{Post: submitOperation(form)})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate generated document: %w", err)
	}
	return doc, nil
}

// MarshalDocument renders doc as indented JSON.
func MarshalDocument(doc *openapi3.T) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}
	return data, nil
}

func listOperation() *openapi3.Operation {
	summary := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("route", openapi3.NewStringSchema())
	return &openapi3.Operation{
		OperationID: "list-forms",
		Summary:     "List form definitions",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Forms in navigation order").
					WithJSONSchema(openapi3.NewArraySchema().WithItems(summary)),
			}),
		),
	}
}

func submitOperation(form model.Form) *openapi3.Operation {
	errorsSchema := openapi3.NewObjectSchema().
		WithProperty("errors", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))

	return &openapi3.Operation{
		OperationID: SubmitOperationID(form.ID),
		Summary:     "Submit " + form.Title,
		Description: form.Subtitle,
		Tags:        []string{form.ID},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(valuesSchema(form)),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription(form.SuccessMessage).
					WithJSONSchema(snapshotSchema(form)),
			}),
			openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Required fields are missing").
					WithJSONSchema(errorsSchema),
			}),
		),
		Extensions: map[string]any{ExtensionKey: formExtension(form)},
	}
}

// valuesSchema describes a submission request: any subset of fields.
func valuesSchema(form model.Form) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = form.Title
	for _, field := range form.Fields {
		schema.WithProperty(field.Name, propertySchema(field))
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}
	return schema
}

// snapshotSchema describes the accepted submission: every key plus the
// timestamp.
func snapshotSchema(form model.Form) *openapi3.Schema {
	schema := valuesSchema(form)
	schema.Required = append(form.FieldNames(), model.SubmittedAtKey)
	timestamp := openapi3.NewDateTimeSchema()
	timestamp.Description = "Submission time, UTC with milliseconds"
	schema.WithProperty(model.SubmittedAtKey, timestamp)
	return schema
}

func propertySchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Kind {
	case model.FieldKindNumber:
		schema = openapi3.NewFloat64Schema()
	case model.FieldKindDate:
		schema = openapi3.NewStringSchema().WithFormat("date")
	case model.FieldKindSelect:
		schema = openapi3.NewStringSchema()
		for _, option := range field.Options {
			schema.Enum = append(schema.Enum, option)
		}
		if !field.Required {
			schema.Enum = append(schema.Enum, "")
		}
	default:
		schema = openapi3.NewStringSchema()
	}
	if field.Required && field.Kind != model.FieldKindNumber {
		schema.MinLength = 1
	}
	schema.Title = field.Label
	schema.Description = field.HelpText
	schema.Extensions = map[string]any{ExtensionKey: fieldExtension(field)}
	return schema
}
