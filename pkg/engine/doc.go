// Package engine holds the per-instance state of a form: the values entered
// so far, the validation error set computed on submit, and the snapshot of
// the last successful submit. Snapshots export as indented JSON with the
// fields in declaration order followed by the submittedAt timestamp.
package engine
