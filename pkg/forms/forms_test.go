package forms

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadforms/pkg/model"
)

func TestBuiltin_LoadsSixForms(t *testing.T) {
	catalog, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}

	want := []string{
		"budgetary-quotation",
		"lead-submitted",
		"export-leads",
		"crm-leads",
		"order-received",
		"lost",
	}
	if diff := cmp.Diff(want, catalog.IDs()); diff != "" {
		t.Fatalf("catalog order mismatch (-want +got):\n%s", diff)
	}

	counts := map[string]int{
		"budgetary-quotation": 11,
		"lead-submitted":      19,
		"export-leads":        22,
		"crm-leads":           14,
		"order-received":      11,
		"lost":                13,
	}
	for id, count := range counts {
		form, err := catalog.Get(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if len(form.Fields) != count {
			t.Errorf("%s: expected %d fields, got %d", id, count, len(form.Fields))
		}
		if form.Route != "/"+id {
			t.Errorf("%s: unexpected route %q", id, form.Route)
		}
	}
}

func TestBuiltin_BudgetaryQuotationDefinition(t *testing.T) {
	form, err := MustBuiltin().ByRoute("/budgetary-quotation/")
	if err != nil {
		t.Fatalf("by route: %v", err)
	}

	wantNames := []string{
		"slno", "bqTitle", "customer", "leadOwner",
		"defenceType", "estimatedValue", "submittedValue",
		"dateOfSubmission", "referenceNo", "competitors", "presentStatus",
	}
	if diff := cmp.Diff(wantNames, form.FieldNames()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	status, _ := form.Field("presentStatus")
	if diff := cmp.Diff([]string{"Open", "In Progress", "Completed", "Rejected"}, status.Options); diff != "" {
		t.Fatalf("option set not resolved (-want +got):\n%s", diff)
	}
	defence, _ := form.Field("defenceType")
	if defence.RequiredMessage != "Defence / Non-Defence Type is required" {
		t.Fatalf("unexpected message %q", defence.RequiredMessage)
	}
	slno, _ := form.Field("slno")
	if slno.RequiredMessage != "Sl. No is required" {
		t.Fatalf("default message not applied: %q", slno.RequiredMessage)
	}
	competitors, _ := form.Field("competitors")
	if competitors.Kind != model.FieldKindMultiline || competitors.Rows != 2 {
		t.Fatalf("unexpected competitors descriptor %+v", competitors)
	}
	if form.Filename.Prefix != "bq" || form.Filename.Field != "referenceNo" {
		t.Fatalf("unexpected filename rule %+v", form.Filename)
	}
	if len(form.Sections) != 3 || form.Sections[0].Icon != "📋" {
		t.Fatalf("unexpected sections %+v", form.Sections)
	}
}

func TestBuiltin_LostFormDefinition(t *testing.T) {
	form, err := MustBuiltin().Get("lost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	slno, ok := form.Field("slno")
	if !ok || !slno.Required || slno.Kind != model.FieldKindNumber {
		t.Fatalf("unexpected slno descriptor %+v", slno)
	}
	if slno.RequiredMessage != "Sl.No is required" {
		t.Fatalf("unexpected message %q", slno.RequiredMessage)
	}
	if form.Filename.Fallback != "loss" || form.FlashMillis != 4500 {
		t.Fatalf("unexpected form settings %+v", form)
	}

	var optional []string
	for _, field := range form.Fields {
		if !field.Required {
			optional = append(optional, field.Name)
		}
	}
	if diff := cmp.Diff([]string{"partners", "competitors", "technicalScore", "quotedPrice"}, optional); diff != "" {
		t.Fatalf("optional fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_LookupMiss(t *testing.T) {
	_, err := MustBuiltin().Get("domestic-leads")
	if !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	_, err = MustBuiltin().ByRoute("/settings")
	if !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

const minimalForm = `
forms:
  visit:
    route: /visit
    sections:
      - id: main
        title: Visit
        icon: '<svg viewBox="0 0 1 1" onload="alert(1)"><path d="M0 0"/><script>x()</script></svg>'
        fields:
          - name: customerName
            required: true
          - name: visitType
            kind: select
            optionSet: visitTypes
`

func TestLoadFS_AppliesDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"options.yml": {Data: []byte("optionSets:\n  visitTypes: [Onsite, Remote]\n")},
		"visit.yaml":  {Data: []byte(minimalForm)},
		"README.md":   {Data: []byte("ignored")},
	}

	catalog, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form, err := catalog.Get("visit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if form.Title != "Visit" || form.Filename.Prefix != "visit" || form.FlashMillis != DefaultFlashMillis {
		t.Fatalf("form defaults not applied: %+v", form)
	}
	if form.SuccessMessage != "Visit submitted successfully!" {
		t.Fatalf("unexpected success message %q", form.SuccessMessage)
	}
	name, _ := form.Field("customerName")
	if name.Kind != model.FieldKindText || name.Label != "Customer Name" || name.RequiredMessage != "Customer Name is required" {
		t.Fatalf("field defaults not applied: %+v", name)
	}
	visitType, _ := form.Field("visitType")
	if diff := cmp.Diff([]string{"Onsite", "Remote"}, visitType.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	icon := form.Sections[0].Icon
	if strings.Contains(icon, "script") || strings.Contains(icon, "onload") {
		t.Fatalf("icon not sanitised: %q", icon)
	}
	if !strings.Contains(icon, "<path") {
		t.Fatalf("safe svg removed: %q", icon)
	}
}

func TestLoadFS_JSONDocument(t *testing.T) {
	doc := `{"forms":{"ping":{"route":"/ping","fields":[{"name":"note","kind":"multiline"}]}}}`
	catalog, err := LoadFS(fstest.MapFS{"ping.json": {Data: []byte(doc)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form, err := catalog.Get("ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if note, _ := form.Field("note"); note.Rows != 2 {
		t.Fatalf("expected default rows, got %+v", note)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "empty file",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("  \n")}},
			want: "empty document",
		},
		{
			name: "unknown option set",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("forms:\n  a:\n    route: /a\n    fields:\n      - {name: x, kind: select, optionSet: nope}\n")}},
			want: "unknown option set",
		},
		{
			name: "duplicate route",
			fsys: fstest.MapFS{
				"a.yaml": {Data: []byte("forms:\n  a:\n    route: /same\n    fields:\n      - {name: x}\n")},
				"b.yaml": {Data: []byte("forms:\n  b:\n    route: /same/\n    fields:\n      - {name: x}\n")},
			},
			want: "route",
		},
		{
			name: "duplicate id",
			fsys: fstest.MapFS{
				"a.yaml": {Data: []byte("forms:\n  a:\n    route: /a\n    fields:\n      - {name: x}\n")},
				"b.yaml": {Data: []byte("forms:\n  a:\n    route: /b\n    fields:\n      - {name: x}\n")},
			},
			want: `duplicate form "a"`,
		},
		{
			name: "invalid definition",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("forms:\n  a:\n    route: /a\n    fields:\n      - {name: x, kind: select}\n")}},
			want: "has no options",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFS(tc.fsys)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCatalog_MergeOverrides(t *testing.T) {
	custom, err := LoadFS(fstest.MapFS{
		"lost.yaml": {Data: []byte("forms:\n  lost:\n    title: Lost (regional)\n    route: /lost\n    fields:\n      - {name: tenderName, required: true}\n")},
		"visit.yaml": {Data: []byte("forms:\n  visit:\n    route: /visit\n    order: 99\n    fields:\n      - {name: note}\n")},
	})
	if err != nil {
		t.Fatalf("load custom: %v", err)
	}

	merged, err := MustBuiltin().Merge(custom)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Len() != 7 {
		t.Fatalf("expected 7 forms, got %d", merged.Len())
	}
	lost, _ := merged.Get("lost")
	if lost.Title != "Lost (regional)" || len(lost.Fields) != 1 {
		t.Fatalf("override not applied: %+v", lost)
	}
	ids := merged.IDs()
	if ids[len(ids)-1] != "visit" {
		t.Fatalf("expected visit last, got %v", ids)
	}

	clash, _ := LoadFS(fstest.MapFS{
		"x.yaml": {Data: []byte("forms:\n  other:\n    route: /lost\n    fields:\n      - {name: note}\n")},
	})
	if _, err := MustBuiltin().Merge(clash); err == nil {
		t.Fatalf("expected route clash error")
	}
}

func TestSource_SwapsCatalog(t *testing.T) {
	src := NewSource(nil)
	if src.Catalog().Len() != 0 {
		t.Fatalf("expected empty catalog")
	}
	src.Store(MustBuiltin())
	if src.Catalog().Len() != 6 {
		t.Fatalf("expected builtin catalog")
	}
}

func TestMarshalYAML_RoundTripsBuiltins(t *testing.T) {
	builtin := MustBuiltin()
	data, err := MarshalYAML(builtin.List())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	reloaded, err := LoadFS(fstest.MapFS{"forms.yaml": {Data: data}})
	if err != nil {
		t.Fatalf("reload: %v\n%s", err, data)
	}
	if diff := cmp.Diff(builtin.List(), reloaded.List()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromForms_DecoratesAndValidates(t *testing.T) {
	catalog, err := FromForms([]model.Form{{
		ID:     "site-visit",
		Route:  "/site-visit",
		Fields: []model.Field{{Name: "visitDate", Kind: model.FieldKindDate, Required: true}},
	}})
	if err != nil {
		t.Fatalf("from forms: %v", err)
	}
	form, _ := catalog.Get("site-visit")
	if form.Title != "Site Visit" || form.Fields[0].RequiredMessage != "Visit Date is required" {
		t.Fatalf("defaults not applied: %+v", form)
	}

	if _, err := FromForms([]model.Form{{ID: "bad", Route: "nope"}}); err == nil {
		t.Fatalf("expected validation error")
	}
}
