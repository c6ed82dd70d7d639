// Package formserver serves the lead forms over HTTP: one page per form
// route with submit, reset and JSON download, an index, and a stateless JSON
// API described by /openapi.json.
//
// Browser state lives in memory, keyed by a session cookie. Nothing is
// persisted; idle sessions are evicted by a janitor started with Start.
package formserver
