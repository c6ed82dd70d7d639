package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// Engine owns the editable state of one form instance: entered values, the
// validation error set, and the snapshot of the last successful submit.
//
// An Engine is not safe for concurrent use. Callers that share one across
// goroutines must serialise access.
type Engine struct {
	form      model.Form
	cfg       config
	state     *State
	errors    ValidationErrors
	snapshot  *Snapshot
	lifecycle *lifecycle
}

// New validates the definition and returns an engine in the editing phase
// with every field empty.
func New(form model.Form, opts ...Option) (*Engine, error) {
	if err := model.Validate(form); err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Engine{
		form:      form.Clone(),
		cfg:       cfg,
		state:     NewState(nil),
		lifecycle: newLifecycle(),
	}, nil
}

// MustNew panics when the definition is invalid. Intended for built-in forms.
func MustNew(form model.Form, opts ...Option) *Engine {
	e, err := New(form, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Form returns the definition the engine was built from.
func (e *Engine) Form() model.Form {
	return e.form.Clone()
}

// Phase reports whether the engine currently holds a snapshot.
func (e *Engine) Phase() Phase {
	return e.lifecycle.phase()
}

// SetFieldValue records value for the named field. No required-field checks
// run here; errors are only computed by Submit. Unknown names and container
// values (maps, slices) are rejected.
func (e *Engine) SetFieldValue(name string, value any) error {
	if _, ok := e.form.Field(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if err := checkScalar(name, value); err != nil {
		return err
	}
	e.state.Set(name, value)
	return nil
}

// SetValues applies several values at once. Nothing is applied when any name
// is unknown or any value is not a scalar.
func (e *Engine) SetValues(values map[string]any) error {
	for name, value := range values {
		if _, ok := e.form.Field(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		if err := checkScalar(name, value); err != nil {
			return err
		}
	}
	for name, value := range values {
		e.state.Set(name, value)
	}
	return nil
}

// Value returns the current value of a field.
func (e *Engine) Value(name string) (any, bool) {
	return e.state.Get(name)
}

// Values returns a copy of the entered values.
func (e *Engine) Values() map[string]any {
	return e.state.Values()
}

// Errors returns a copy of the error set computed by the last submit.
func (e *Engine) Errors() ValidationErrors {
	return e.errors.clone()
}

// Snapshot returns the current snapshot, if the last submit passed (or, with
// WithRetainSnapshotOnFailure, if any earlier submit passed).
func (e *Engine) Snapshot() (Snapshot, bool) {
	if e.snapshot == nil {
		return Snapshot{}, false
	}
	return *e.snapshot, true
}

// Validate computes the error set for the current values without changing
// engine state.
func (e *Engine) Validate() ValidationErrors {
	errs := make(ValidationErrors)
	for _, field := range e.form.Fields {
		if !field.Required {
			continue
		}
		value, _ := e.state.Get(field.Name)
		if !isEmpty(value, e.cfg.emptyIsWhitespace) {
			continue
		}
		message := field.RequiredMessage
		if message == "" {
			message = model.DefaultRequiredMessage(labelFor(field))
		}
		errs[field.Name] = message
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates the required fields. When any is empty the returned error
// is a ValidationErrors and no snapshot is produced. Otherwise the snapshot is
// stored, the error set is cleared, and the snapshot is returned.
func (e *Engine) Submit() (Snapshot, error) {
	errs := e.Validate()
	if len(errs) > 0 {
		e.errors = errs
		if !e.cfg.retainOnFailure {
			e.snapshot = nil
			if err := e.lifecycle.fire(eventInvalidate); err != nil {
				return Snapshot{}, err
			}
		}
		e.cfg.logger.Debug("submission rejected",
			zap.String("form", e.form.ID),
			zap.Strings("fields", errs.Fields()),
		)
		return Snapshot{}, errs.clone()
	}

	snapshot := newSnapshot(e.form, e.state.Values(), e.cfg.clock())
	e.snapshot = &snapshot
	e.errors = nil
	if err := e.lifecycle.fire(eventAccept); err != nil {
		return Snapshot{}, err
	}
	e.cfg.logger.Debug("submission accepted",
		zap.String("form", e.form.ID),
		zap.String("submittedAt", snapshot.Timestamp()),
	)
	return snapshot, nil
}

// Reset clears values, errors and the snapshot. Calling it repeatedly has no
// further effect.
func (e *Engine) Reset() {
	e.state.Clear()
	e.errors = nil
	e.snapshot = nil
	// Both phases accept reset.
	_ = e.lifecycle.fire(eventReset)
}

func labelFor(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return model.DefaultLabeler(field.Name)
}
