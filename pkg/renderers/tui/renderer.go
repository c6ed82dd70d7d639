package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/render"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
	noneOption     = "(none)"
)

// Renderer runs a terminal session for one form: it prompts every field,
// submits through the engine, re-prompts only the fields that failed and
// returns the exported JSON once the submission is valid.
type Renderer struct {
	driver      PromptDriver
	engineOpts  []engine.Option
	downloader  engine.Downloader
	maxAttempts int
	confirm     bool
	theme       Theme
	logger      *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer backed by survey unless a driver is supplied.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		maxAttempts: 5,
		theme:       DefaultTheme,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the format of the bytes Render returns.
func (r *Renderer) ContentType() string {
	return engine.ContentTypeJSON
}

// Render runs the session. opts.Values pre-fills prompts.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eng, err := engine.New(form, r.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if err := eng.SetValues(opts.Values); err != nil {
		return nil, fmt.Errorf("tui: prefill: %w", err)
	}

	if err := r.info(ctx, "", form.Title); err != nil {
		return nil, err
	}
	if form.Subtitle != "" {
		if err := r.info(ctx, "", form.Subtitle); err != nil {
			return nil, err
		}
	}

	pending := form
	for attempt := 1; ; attempt++ {
		if err := r.promptForm(ctx, eng, pending); err != nil {
			return nil, err
		}

		if r.confirm {
			ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit " + form.Title + "?", Default: true})
			if err != nil {
				return nil, err
			}
			if !ok {
				eng.Reset()
				pending = form
				if err := r.info(ctx, r.theme.InfoPrefix, "Form reset"); err != nil {
					return nil, err
				}
				continue
			}
		}

		_, err := eng.Submit()
		if err == nil {
			break
		}
		var verrs engine.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		r.logger.Debug("tui submission rejected",
			zap.String("form", form.ID), zap.Int("attempt", attempt), zap.Strings("fields", verrs.Fields()))
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return nil, fmt.Errorf("%w: %w", ErrTooManyAttempts, verrs)
		}

		pending = form.Clone()
		render.ApplySubset(&pending, render.FieldSubset{Names: verrs.Fields()})
		for _, field := range pending.Fields {
			if err := r.info(ctx, r.theme.ErrorPrefix, verrs[field.Name]); err != nil {
				return nil, err
			}
		}
	}

	if err := r.info(ctx, r.theme.InfoPrefix, form.SuccessMessage); err != nil {
		return nil, err
	}
	if r.downloader != nil {
		if err := eng.ExportTo(ctx, r.downloader); err != nil {
			return nil, fmt.Errorf("tui: deliver export: %w", err)
		}
	}
	export, _, err := eng.Export()
	if err != nil {
		return nil, fmt.Errorf("tui: export: %w", err)
	}
	return export.Data, nil
}

func (r *Renderer) promptForm(ctx context.Context, eng *engine.Engine, form model.Form) error {
	printed := make(map[string]bool)
	for _, field := range form.Fields {
		if field.Section != "" && !printed[field.Section] {
			printed[field.Section] = true
			if section, ok := sectionByID(form, field.Section); ok {
				if err := r.info(ctx, r.theme.SectionPrefix, sectionHeading(section)); err != nil {
					return err
				}
			}
		}
		value, err := r.promptField(ctx, eng, field)
		if err != nil {
			return err
		}
		if err := eng.SetFieldValue(field.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, eng *engine.Engine, field model.Field) (any, error) {
	current, _ := eng.Value(field.Name)
	label := displayLabel(field)
	defaultText := engine.DisplayValue(current)

	switch field.Kind {
	case model.FieldKindSelect:
		return r.promptSelect(ctx, field, label, defaultText)
	case model.FieldKindMultiline:
		text, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultText, Help: field.HelpText})
		if err != nil {
			return nil, err
		}
		return text, nil
	case model.FieldKindNumber:
		return r.promptParsed(ctx, field, label, defaultText, parseNumber)
	case model.FieldKindDate:
		return r.promptParsed(ctx, field, label, defaultText, parseLayout(dateLayout))
	case model.FieldKindDateTime:
		return r.promptParsed(ctx, field, label, defaultText, parseLayout(dateTimeLayout))
	default:
		text, err := r.driver.Input(ctx, InputConfig{Message: label, Default: defaultText, Help: field.HelpText})
		if err != nil {
			return nil, err
		}
		return text, nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field, label, current string) (any, error) {
	options := append([]string(nil), field.Options...)
	if !field.Required {
		options = append(options, noneOption)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      options,
		DefaultIndex: indexOf(options, current),
		Help:         field.HelpText,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(options) || options[idx] == noneOption {
		return "", nil
	}
	return options[idx], nil
}

// promptParsed loops until parse accepts the input. Empty input is always
// accepted so the engine can report missing required values itself.
func (r *Renderer) promptParsed(ctx context.Context, field model.Field, label, current string, parse func(string) (any, error)) (any, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: current,
			Help:    field.HelpText,
		})
		if err != nil {
			return nil, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return "", nil
		}
		value, err := parse(input)
		if err != nil {
			if err := r.info(ctx, r.theme.ErrorPrefix, fmt.Sprintf("Invalid %s: %v", field.Label, err)); err != nil {
				return nil, err
			}
			continue
		}
		return value, nil
	}
}

func (r *Renderer) info(ctx context.Context, prefix, msg string) error {
	if msg == "" {
		return nil
	}
	if prefix != "" {
		msg = prefix + " " + msg
	}
	return r.driver.Info(ctx, msg)
}

func parseNumber(raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("not a number")
	}
	return f, nil
}

func parseLayout(layout string) func(string) (any, error) {
	return func(raw string) (any, error) {
		if _, err := time.Parse(layout, raw); err != nil {
			return nil, fmt.Errorf("expected %s", layout)
		}
		return raw, nil
	}
}

func displayLabel(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}

func sectionByID(form model.Form, id string) (model.Section, bool) {
	for _, section := range form.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return model.Section{}, false
}

// sectionHeading drops markup icons, keeping emoji.
func sectionHeading(section model.Section) string {
	icon := strings.TrimSpace(section.Icon)
	if icon == "" || strings.HasPrefix(icon, "<") {
		return section.Title
	}
	return icon + " " + section.Title
}
