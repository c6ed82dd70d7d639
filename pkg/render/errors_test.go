package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/render"
)

func TestMapErrors(t *testing.T) {
	form := model.Form{
		Fields: []model.Field{
			{Name: "slno", Kind: model.FieldKindNumber},
			{Name: "customer", Kind: model.FieldKindText},
		},
	}

	payload := map[string][]string{
		"slno":             {"Sl.No is required", " Sl.No is required "},
		"#/customer":       {"Customer is required"},
		"non_field_errors": {"Session expired"},
		"tenderName":       {"Unknown field message"},
		"":                 {"  "},
	}

	mapped := render.MapErrors(form, payload)

	wantFields := map[string][]string{
		"slno":     {"Sl.No is required"},
		"customer": {"Customer is required"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Session expired", "Unknown field message"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if got := render.FirstError(mapped.Fields, "slno"); got != "Sl.No is required" {
		t.Fatalf("unexpected first error %q", got)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
