package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// Built-in widget identifiers.
const (
	WidgetText     = "text"
	WidgetNumber   = "number"
	WidgetDate     = "date"
	WidgetDateTime = "datetime-local"
	WidgetTextarea = "textarea"
	WidgetSelect   = "select"
)

// MetadataKey is the field metadata entry that pins a widget explicitly.
const MetadataKey = "widget"

// Matcher decides whether a widget should handle the field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry picks a widget for each field. An explicit metadata hint wins,
// then matchers by descending priority, ties broken by registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns a registry with one matcher per field kind.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher. The latest registration of a name does not
// replace earlier ones; priority decides.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget for field.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := strings.TrimSpace(field.Metadata[MetadataKey]); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	if len(rules) == 0 {
		return "", false
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator by recording the resolved widget in
// each field's metadata. Existing hints are left alone.
func (r *Registry) Decorate(form *model.Form) error {
	if r == nil || form == nil {
		return nil
	}
	for idx := range form.Fields {
		field := &form.Fields[idx]
		widget, ok := r.Resolve(*field)
		if !ok {
			continue
		}
		if field.Metadata == nil {
			field.Metadata = make(map[string]string)
		}
		if field.Metadata[MetadataKey] == "" {
			field.Metadata[MetadataKey] = widget
		}
	}
	return nil
}

// InputType maps a widget to the HTML input type attribute. Widgets rendered
// with their own element (textarea, select) return "".
func InputType(widget string) string {
	switch widget {
	case WidgetTextarea, WidgetSelect:
		return ""
	case WidgetNumber, WidgetDate, WidgetDateTime:
		return widget
	case "", WidgetText:
		return "text"
	default:
		return widget
	}
}

func kindIs(kind model.FieldKind) Matcher {
	return func(field model.Field) bool {
		return field.Kind == kind
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSelect, 90, func(field model.Field) bool {
		return field.Kind == model.FieldKindSelect || len(field.Options) > 0
	})
	r.Register(WidgetTextarea, 80, kindIs(model.FieldKindMultiline))
	r.Register(WidgetDateTime, 70, kindIs(model.FieldKindDateTime))
	r.Register(WidgetDate, 60, kindIs(model.FieldKindDate))
	r.Register(WidgetNumber, 50, kindIs(model.FieldKindNumber))
	r.Register(WidgetText, 0, func(model.Field) bool { return true })
}
