package vanilla

// ChromeClass is a semantic CSS class emitted around form content.
type ChromeClass string

const (
	ClassShell    ChromeClass = "lf-shell"
	ClassSidebar  ChromeClass = "lf-sidebar"
	ClassForm     ChromeClass = "lf-form"
	ClassHeader   ChromeClass = "lf-header"
	ClassSection  ChromeClass = "lf-section"
	ClassGrid     ChromeClass = "lf-grid"
	ClassField    ChromeClass = "lf-field"
	ClassInvalid  ChromeClass = "lf-field--invalid"
	ClassActions  ChromeClass = "lf-actions"
	ClassErrors   ChromeClass = "lf-errors"
	ClassSnackbar ChromeClass = "lf-snackbar"
	ClassPreview  ChromeClass = "lf-preview"
)

// chromeView exposes the shell and layout classes to the templates.
type chromeView struct {
	Shell    string `json:"shell"`
	Sidebar  string `json:"sidebar"`
	Header   string `json:"header"`
	Grid     string `json:"grid"`
	Actions  string `json:"actions"`
	Errors   string `json:"errors"`
	Snackbar string `json:"snackbar"`
	Preview  string `json:"preview"`
}

func defaultChrome() chromeView {
	return chromeView{
		Shell:    string(ClassShell),
		Sidebar:  string(ClassSidebar),
		Header:   string(ClassHeader),
		Grid:     string(ClassGrid),
		Actions:  string(ClassActions),
		Errors:   string(ClassErrors),
		Snackbar: string(ClassSnackbar),
		Preview:  string(ClassPreview),
	}
}
