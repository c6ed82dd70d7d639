// Package openapi describes the JSON submission API of a form catalog as an
// OpenAPI 3 document and imports form definitions back out of such
// documents. Descriptor details that JSON Schema cannot express travel in
// x-formgen extensions.
package openapi
