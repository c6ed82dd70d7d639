package vanilla

import (
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/render"
	"github.com/goliatone/go-leadforms/pkg/themes"
	"github.com/goliatone/go-leadforms/pkg/widgets"
)

// View structs are converted to pongo2 contexts through their json tags.

type optionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type fieldView struct {
	ID          string       `json:"id"`
	ErrorID     string       `json:"errorId"`
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Widget      string       `json:"widget"`
	InputType   string       `json:"inputType"`
	Value       string       `json:"value"`
	Required    bool         `json:"required"`
	Error       string       `json:"error"`
	Placeholder string       `json:"placeholder"`
	HelpText    string       `json:"helpText"`
	Rows        int          `json:"rows"`
	Class       string       `json:"class"`
	Options     []optionView `json:"options"`
}

type sectionView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Icon   string      `json:"icon"`
	Class  string      `json:"class"`
	Fields []fieldView `json:"fields"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type formView struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Subtitle     string        `json:"subtitle"`
	Class        string        `json:"class"`
	Action       string        `json:"action"`
	ResetURL     string        `json:"resetUrl"`
	DownloadURL  string        `json:"downloadUrl"`
	Hidden       []hiddenView  `json:"hidden"`
	FormErrors   []string      `json:"formErrors"`
	Sections     []sectionView `json:"sections"`
	Flash        string        `json:"flash"`
	FlashMillis  int           `json:"flashMillis"`
	HasSnapshot  bool          `json:"hasSnapshot"`
	Preview      string        `json:"preview"`
	Phase        string        `json:"phase"`
	ErrorCount   int           `json:"errorCount"`
	SubmitLabel  string        `json:"submitLabel"`
	ResetLabel   string        `json:"resetLabel"`
	PreviewLabel string        `json:"previewLabel"`
	Chrome       chromeView    `json:"chrome"`
}

type navView struct {
	Title  string `json:"title"`
	Route  string `json:"route"`
	Active bool   `json:"active"`
}

type pageView struct {
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle"`
	Style         string     `json:"style"`
	StylesheetURL string     `json:"stylesheetUrl"`
	ThemeName     string     `json:"themeName"`
	ThemeVariant  string     `json:"themeVariant"`
	Nav           []navView  `json:"nav"`
	Content       string     `json:"content"`
	Chrome        chromeView `json:"chrome"`
}

type indexCardView struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Route    string `json:"route"`
	Fields   int    `json:"fields"`
	Required int    `json:"required"`
}

func (r *Renderer) buildFormView(form model.Form, opts render.RenderOptions) (formView, error) {
	mapped := render.MapErrors(form, opts.Errors)
	view := formView{
		ID:           form.ID,
		Title:        form.Title,
		Subtitle:     form.Subtitle,
		Class:        string(ClassForm),
		Action:       firstNonEmpty(opts.Action, form.Route),
		ResetURL:     firstNonEmpty(opts.ResetURL, strings.TrimSuffix(form.Route, "/")+"/reset"),
		DownloadURL:  firstNonEmpty(opts.DownloadURL, strings.TrimSuffix(form.Route, "/")+"/download"),
		FormErrors:   render.MergeFormErrors(opts.FormErrors, mapped.Form...),
		Flash:        opts.Flash,
		FlashMillis:  opts.FlashMillis,
		Phase:        string(opts.Phase),
		SubmitLabel:  "Submit",
		ResetLabel:   "Reset",
		PreviewLabel: "Submitted Data",
		Chrome:       defaultChrome(),
	}
	if view.FlashMillis <= 0 {
		view.FlashMillis = form.FlashMillis
	}

	for _, hidden := range render.SortedHiddenFields(opts.HiddenFields) {
		view.Hidden = append(view.Hidden, hiddenView{Name: hidden.Name, Value: hidden.Value})
	}

	if !opts.Snapshot.IsZero() {
		preview, err := opts.Snapshot.Indented()
		if err != nil {
			return formView{}, err
		}
		view.HasSnapshot = true
		view.Preview = string(preview)
	}

	byName := make(map[string]fieldView, len(form.Fields))
	for _, field := range form.Fields {
		fv := r.buildFieldView(form.ID, field, opts.Values, mapped.Fields)
		if fv.Error != "" {
			view.ErrorCount++
		}
		byName[field.Name] = fv
	}

	for _, section := range form.Sections {
		sv := sectionView{
			ID:    section.ID,
			Title: section.Title,
			Icon:  forms.SanitizeIcon(section.Icon),
			Class: string(ClassSection),
		}
		for _, field := range form.FieldsIn(section.ID) {
			sv.Fields = append(sv.Fields, byName[field.Name])
		}
		if len(sv.Fields) > 0 {
			view.Sections = append(view.Sections, sv)
		}
	}

	loose := sectionView{Class: string(ClassSection)}
	for _, field := range form.Fields {
		if field.Section == "" {
			loose.Fields = append(loose.Fields, byName[field.Name])
		}
	}
	if len(loose.Fields) > 0 {
		view.Sections = append(view.Sections, loose)
	}
	return view, nil
}

func (r *Renderer) buildFieldView(formID string, field model.Field, values map[string]any, errs map[string][]string) fieldView {
	widget, ok := r.widgets.Resolve(field)
	if !ok {
		widget = widgets.WidgetText
	}
	value := engine.DisplayValue(values[field.Name])
	message := render.FirstError(errs, field.Name)

	fv := fieldView{
		ID:          controlID(formID, field.Name),
		ErrorID:     errorID(formID, field.Name),
		Name:        field.Name,
		Label:       field.Label,
		Widget:      widget,
		InputType:   widgets.InputType(widget),
		Value:       value,
		Required:    field.Required,
		Error:       message,
		Placeholder: field.Placeholder,
		HelpText:    field.HelpText,
		Rows:        field.Rows,
	}
	invalid := ""
	if message != "" {
		invalid = string(ClassInvalid)
	}
	fv.Class = classList(string(ClassField), spanClass(field.Span), invalid)

	if widget == widgets.WidgetSelect {
		for _, option := range field.Options {
			fv.Options = append(fv.Options, optionView{Value: option, Selected: option == value})
		}
	}
	if fv.Rows <= 0 && widget == widgets.WidgetTextarea {
		fv.Rows = 2
	}
	return fv
}

func buildNav(items []render.NavItem) []navView {
	out := make([]navView, 0, len(items))
	for _, item := range items {
		out = append(out, navView{Title: item.Title, Route: item.Route, Active: item.Active})
	}
	return out
}

func buildPage(title, subtitle, content string, nav []render.NavItem, cfg *theme.RendererConfig) pageView {
	page := pageView{
		Title:         title,
		Subtitle:      subtitle,
		Nav:           buildNav(nav),
		Content:       content,
		StylesheetURL: "/assets/" + StylesheetName,
		Chrome:        defaultChrome(),
	}
	if cfg != nil {
		page.Style = themes.CSSVarsStyle(cfg)
		page.ThemeName = cfg.Theme
		page.ThemeVariant = cfg.Variant
		if cfg.AssetURL != nil {
			if url := cfg.AssetURL(themes.Stylesheet); url != "" {
				page.StylesheetURL = url
			}
		}
	}
	return page
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
