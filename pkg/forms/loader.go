package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-leadforms/pkg/model"
)

var (
	// ErrFormNotFound is returned when a lookup misses.
	ErrFormNotFound = errors.New("forms: form not found")
	// ErrEmptyDocument is returned for definition files without content.
	ErrEmptyDocument = errors.New("forms: empty document")
)

type documentFile struct {
	OptionSets map[string][]string `json:"optionSets,omitempty" yaml:"optionSets,omitempty"`
	Forms      map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Title          string             `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle       string             `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Route          string             `json:"route,omitempty" yaml:"route,omitempty"`
	SuccessMessage string             `json:"successMessage,omitempty" yaml:"successMessage,omitempty"`
	Order          int                `json:"order,omitempty" yaml:"order,omitempty"`
	FlashMillis    int                `json:"flashMillis,omitempty" yaml:"flashMillis,omitempty"`
	Filename       model.FilenameRule `json:"filename,omitempty" yaml:"filename,omitempty"`
	Sections       []sectionFile      `json:"sections,omitempty" yaml:"sections,omitempty"`
	Fields         []fieldFile        `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type sectionFile struct {
	ID     string      `json:"id,omitempty" yaml:"id,omitempty"`
	Title  string      `json:"title,omitempty" yaml:"title,omitempty"`
	Icon   string      `json:"icon,omitempty" yaml:"icon,omitempty"`
	Fields []fieldFile `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type fieldFile struct {
	model.Field `json:",inline" yaml:",inline"`
	OptionSet   string `json:"optionSet,omitempty" yaml:"optionSet,omitempty"`
}

type parsedDocument struct {
	path string
	doc  documentFile
}

// LoadFS walks fsys and parses every JSON/YAML definition file. Option sets
// are shared across all files in the tree. Duplicate form ids or routes are
// rejected.
func LoadFS(fsys fs.FS, opts ...LoadOption) (*Catalog, error) {
	cfg := newLoadConfig(opts...)
	catalog := NewCatalog()
	if fsys == nil {
		return catalog, nil
	}

	var docs []parsedDocument
	optionSets := make(map[string][]string)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("forms: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		for name, options := range doc.OptionSets {
			name = strings.TrimSpace(name)
			if _, dup := optionSets[name]; dup {
				return fmt.Errorf("forms: duplicate option set %q (file %s)", name, path)
			}
			optionSets[name] = append([]string(nil), options...)
		}
		docs = append(docs, parsedDocument{path: path, doc: doc})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, parsed := range docs {
		ids := make([]string, 0, len(parsed.doc.Forms))
		for id := range parsed.doc.Forms {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, rawID := range ids {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return nil, fmt.Errorf("forms: file %s defines an empty form id", parsed.path)
			}
			form, err := normaliseForm(id, parsed.doc.Forms[rawID], optionSets, parsed.path)
			if err != nil {
				return nil, err
			}
			if err := model.Decorate(&form, cfg.decorators...); err != nil {
				return nil, fmt.Errorf("forms: decorate %q: %w", id, err)
			}
			if err := catalog.add(form); err != nil {
				return nil, fmt.Errorf("%w (file %s)", err, parsed.path)
			}
		}
	}

	return catalog, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("forms: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("forms: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseForm(id string, raw formFile, optionSets map[string][]string, source string) (model.Form, error) {
	form := model.Form{
		ID:             id,
		Title:          strings.TrimSpace(raw.Title),
		Subtitle:       strings.TrimSpace(raw.Subtitle),
		Route:          strings.TrimSpace(raw.Route),
		SuccessMessage: strings.TrimSpace(raw.SuccessMessage),
		Order:          raw.Order,
		FlashMillis:    raw.FlashMillis,
		Filename:       raw.Filename,
	}

	resolve := func(field fieldFile, section string) (model.Field, error) {
		out := field.Field
		out.Name = strings.TrimSpace(out.Name)
		if section != "" {
			out.Section = section
		}
		if field.OptionSet != "" {
			options, ok := optionSets[field.OptionSet]
			if !ok {
				return model.Field{}, fmt.Errorf("forms: form %q field %q references unknown option set %q (file %s)",
					id, out.Name, field.OptionSet, source)
			}
			out.Options = append(append([]string(nil), options...), out.Options...)
		}
		return out, nil
	}

	for _, section := range raw.Sections {
		sectionID := strings.TrimSpace(section.ID)
		form.Sections = append(form.Sections, model.Section{
			ID:    sectionID,
			Title: strings.TrimSpace(section.Title),
			Icon:  section.Icon,
		})
		for _, field := range section.Fields {
			resolved, err := resolve(field, sectionID)
			if err != nil {
				return model.Form{}, err
			}
			form.Fields = append(form.Fields, resolved)
		}
	}
	for _, field := range raw.Fields {
		resolved, err := resolve(field, "")
		if err != nil {
			return model.Form{}, err
		}
		form.Fields = append(form.Fields, resolved)
	}

	return form, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
