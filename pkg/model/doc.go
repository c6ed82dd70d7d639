// Package model defines the form definitions shared by the engine, the
// catalog and every renderer. A Form is a static, ordered list of Field
// descriptors grouped into sections, plus the routing and filename rules used
// when a submission is exported. Definitions live in internal/model; this
// package re-exports them together with validation and labeling helpers.
package model
