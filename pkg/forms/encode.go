package forms

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// FromForms decorates and validates definitions built in code or imported
// from another format, returning them as a catalog.
func FromForms(list []model.Form, opts ...LoadOption) (*Catalog, error) {
	cfg := newLoadConfig(opts...)
	catalog := NewCatalog()
	for _, form := range list {
		form = form.Clone()
		if err := model.Decorate(&form, cfg.decorators...); err != nil {
			return nil, fmt.Errorf("forms: decorate %q: %w", form.ID, err)
		}
		if err := catalog.add(form); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// MarshalYAML encodes definitions in the layout LoadFS reads: fields are
// nested under their section, unsectioned fields are listed on the form.
func MarshalYAML(list []model.Form) ([]byte, error) {
	doc := documentFile{Forms: make(map[string]formFile, len(list))}
	for _, form := range list {
		out := formFile{
			Title:          form.Title,
			Subtitle:       form.Subtitle,
			Route:          form.Route,
			SuccessMessage: form.SuccessMessage,
			Order:          form.Order,
			FlashMillis:    form.FlashMillis,
			Filename:       form.Filename,
		}
		for _, section := range form.Sections {
			file := sectionFile{ID: section.ID, Title: section.Title, Icon: section.Icon}
			for _, field := range form.FieldsIn(section.ID) {
				field.Section = ""
				file.Fields = append(file.Fields, fieldFile{Field: field})
			}
			out.Sections = append(out.Sections, file)
		}
		for _, field := range form.FieldsIn("") {
			out.Fields = append(out.Fields, fieldFile{Field: field})
		}
		doc.Forms[form.ID] = out
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("forms: encode yaml: %w", err)
	}
	return data, nil
}
