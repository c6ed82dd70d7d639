// Package download delivers engine exports: to a directory on disk for the
// terminal flow, or as an HTTP attachment for the browser flow.
package download
