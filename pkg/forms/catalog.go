package forms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// Catalog indexes validated form definitions by id and by route. A Catalog is
// read-only once built; use Merge to derive a new one.
type Catalog struct {
	byID    map[string]model.Form
	byRoute map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:    make(map[string]model.Form),
		byRoute: make(map[string]string),
	}
}

func (c *Catalog) add(form model.Form) error {
	if err := model.Validate(form); err != nil {
		return fmt.Errorf("forms: %w", err)
	}
	if _, exists := c.byID[form.ID]; exists {
		return fmt.Errorf("forms: duplicate form %q", form.ID)
	}
	route := normaliseRoute(form.Route)
	if owner, exists := c.byRoute[route]; exists {
		return fmt.Errorf("forms: route %q used by %q and %q", route, owner, form.ID)
	}
	c.byID[form.ID] = form.Clone()
	c.byRoute[route] = form.ID
	return nil
}

// Get returns the form registered under id.
func (c *Catalog) Get(id string) (model.Form, error) {
	if c != nil {
		if form, ok := c.byID[id]; ok {
			return form.Clone(), nil
		}
	}
	return model.Form{}, fmt.Errorf("%w: %q", ErrFormNotFound, id)
}

// ByRoute returns the form mounted at route. Trailing slashes are ignored.
func (c *Catalog) ByRoute(route string) (model.Form, error) {
	if c != nil {
		if id, ok := c.byRoute[normaliseRoute(route)]; ok {
			return c.Get(id)
		}
	}
	return model.Form{}, fmt.Errorf("%w: route %q", ErrFormNotFound, route)
}

// Has reports whether id is registered.
func (c *Catalog) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of forms.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}

// List returns every form ordered by Order, then by id.
func (c *Catalog) List() []model.Form {
	if c == nil {
		return nil
	}
	out := make([]model.Form, 0, len(c.byID))
	for _, form := range c.byID {
		out = append(out, form.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].ID < out[j].ID
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// IDs returns the registered ids in List order.
func (c *Catalog) IDs() []string {
	forms := c.List()
	ids := make([]string, 0, len(forms))
	for _, form := range forms {
		ids = append(ids, form.ID)
	}
	return ids
}

// Merge returns a new catalog holding c's forms overridden by other's. A form
// in other replaces the one with the same id; route clashes between
// different ids are errors.
func (c *Catalog) Merge(other *Catalog) (*Catalog, error) {
	out := NewCatalog()
	overrides := make(map[string]struct{})
	if other != nil {
		for id := range other.byID {
			overrides[id] = struct{}{}
		}
	}
	for _, form := range c.List() {
		if _, replaced := overrides[form.ID]; replaced {
			continue
		}
		if err := out.add(form); err != nil {
			return nil, err
		}
	}
	for _, form := range other.List() {
		if err := out.add(form); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func normaliseRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
