// Package schema derives JSON Schema (Draft 2020-12) documents describing the
// files a form exports, and validates exported data against them.
package schema
