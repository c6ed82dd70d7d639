package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/model"
)

// NavItem is one entry of the form navigation.
type NavItem struct {
	ID     string
	Title  string
	Route  string
	Active bool
}

// RenderOptions carry per-request state into a renderer. The form definition
// itself is never mutated.
type RenderOptions struct {
	// Values pre-populates controls keyed by field name.
	Values map[string]any
	// Errors holds field-level validation messages keyed by field name.
	Errors map[string][]string
	// FormErrors holds messages that do not belong to a single field.
	FormErrors []string
	// Snapshot is the last successful submission. A zero snapshot hides the
	// preview and download link.
	Snapshot engine.Snapshot
	Phase    engine.Phase
	// Flash is the success message shown in the snackbar, FlashMillis how long
	// it stays on screen.
	Flash       string
	FlashMillis int
	// HiddenFields are emitted verbatim as hidden inputs (CSRF token, etc).
	HiddenFields map[string]string
	Navigation   []NavItem
	// Action, ResetURL and DownloadURL default to the form route when empty.
	Action      string
	ResetURL    string
	DownloadURL string
	Theme       *theme.RendererConfig
}

// Navigation builds nav items for the given forms, marking activeID.
func Navigation(forms []model.Form, activeID string) []NavItem {
	if len(forms) == 0 {
		return nil
	}
	items := make([]NavItem, 0, len(forms))
	for _, form := range forms {
		items = append(items, NavItem{
			ID:     form.ID,
			Title:  form.Title,
			Route:  form.Route,
			Active: form.ID == activeID,
		})
	}
	return items
}
