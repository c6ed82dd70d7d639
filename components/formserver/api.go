package formserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/download"
	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/openapi"
	"github.com/goliatone/go-leadforms/pkg/schema"
)

type formSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Route    string `json:"route"`
	Fields   int    `json:"fields"`
	Required int    `json:"required"`
}

type dataResponse struct {
	Data any `json:"data"`
}

type submissionResponse struct {
	Data     engine.Snapshot `json:"data"`
	Filename string          `json:"filename"`
}

func (s *server) handleListForms(w http.ResponseWriter, r *http.Request) {
	list := s.catalog().List()
	out := make([]formSummary, 0, len(list))
	for _, form := range list {
		summary := formSummary{
			ID:       form.ID,
			Title:    form.Title,
			Subtitle: form.Subtitle,
			Route:    s.link(form.Route),
			Fields:   len(form.Fields),
		}
		for _, field := range form.Fields {
			if field.Required {
				summary.Required++
			}
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: out})
}

func (s *server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	form, err := s.lookupForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: form})
}

func (s *server) handleSchema(w http.ResponseWriter, r *http.Request) {
	form, err := s.lookupForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := schema.Marshal(form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleSubmitJSON runs a stateless submission: 200 with the snapshot, or
// 422 with the error set. ?download=1 answers with the export attachment.
func (s *server) handleSubmitJSON(w http.ResponseWriter, r *http.Request) {
	form, err := s.lookupForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	values, err := decodeValues(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}

	eng, err := engine.New(form, s.opts.EngineOptions...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := eng.SetValues(values); err != nil {
		s.writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}

	snapshot, err := eng.Submit()
	if err != nil {
		var verrs engine.ValidationErrors
		if !errors.As(err, &verrs) {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Errors: verrs})
		return
	}

	export, _, err := eng.Export()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("api submission accepted", zap.String("form", form.ID), zap.String("filename", export.Filename))
	if r.URL.Query().Get("download") == "1" {
		if err := download.NewAttachmentWriter(w, nil).Download(r.Context(), export); err != nil {
			s.logger.Warn("download failed", zap.String("form", form.ID), zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, submissionResponse{Data: snapshot, Filename: export.Filename})
}

func (s *server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	opts := []openapi.DescribeOption{openapi.WithTitle(s.opts.APITitle)}
	if s.base != "" {
		opts = append(opts, openapi.WithServerURL(s.base))
	}
	doc, err := openapi.Describe(r.Context(), s.catalog(), opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := openapi.MarshalDocument(doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *server) lookupForm(r *http.Request) (model.Form, error) {
	form, err := s.catalog().Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return model.Form{}, StatusError{Code: http.StatusNotFound, Err: err}
		}
		return model.Form{}, err
	}
	return form, nil
}

func decodeValues(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("body must be a JSON object: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("body must hold a single JSON object")
	}
	return values, nil
}
