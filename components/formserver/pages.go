package formserver

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/download"
	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/render"
)

var (
	errSessionExpired = errors.New("session expired, reload the form and try again")
	errBadCSRF        = errors.New("invalid form token")
)

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list := s.catalog().List()
	page, err := s.renderer.RenderIndex(r.Context(), list, render.RenderOptions{
		Navigation: s.navigation(list, ""),
		Theme:      s.theme,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// handleFormRoute dispatches <route>, <route>/reset and <route>/download.
// Routes are resolved per request so catalog reloads apply immediately.
func (s *server) handleFormRoute(w http.ResponseWriter, r *http.Request) {
	catalog := s.catalog()
	action := ""
	form, err := catalog.ByRoute(r.URL.Path)
	if err != nil {
		route, suffix := splitAction(r.URL.Path)
		if suffix == "" {
			http.NotFound(w, r)
			return
		}
		if form, err = catalog.ByRoute(route); err != nil {
			http.NotFound(w, r)
			return
		}
		action = suffix
	}

	switch {
	case action == "" && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		s.showForm(w, r, form)
	case action == "" && r.Method == http.MethodPost:
		s.submitForm(w, r, form)
	case action == "reset" && r.Method == http.MethodPost:
		s.resetForm(w, r, form)
	case action == "download" && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		s.downloadForm(w, r, form)
	default:
		allow := http.MethodGet + ", " + http.MethodHead + ", " + http.MethodPost
		switch action {
		case "reset":
			allow = http.MethodPost
		case "download":
			allow = http.MethodGet + ", " + http.MethodHead
		}
		w.Header().Set("Allow", allow)
		s.writeError(w, r, StatusError{Code: http.StatusMethodNotAllowed})
	}
}

// showForm renders an empty form. Visiting a form discards whatever the
// session held for it.
func (s *server) showForm(w http.ResponseWriter, r *http.Request, form model.Form) {
	sess := s.ensureSession(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.discard(form.ID)
	eng, err := sess.engine(form, s.opts.EngineOptions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderForm(w, r, sess, eng, http.StatusOK, "")
}

func (s *server) submitForm(w http.ResponseWriter, r *http.Request, form model.Form) {
	sess, err := s.verifiedSession(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	eng, err := sess.engine(form, s.opts.EngineOptions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, field := range form.Fields {
		values, ok := r.PostForm[field.Name]
		if !ok {
			continue
		}
		value := ""
		if len(values) > 0 {
			value = values[0]
		}
		if err := eng.SetFieldValue(field.Name, value); err != nil {
			s.writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
			return
		}
	}

	if _, err := eng.Submit(); err != nil {
		var verrs engine.ValidationErrors
		if !errors.As(err, &verrs) {
			s.writeError(w, r, err)
			return
		}
		s.logger.Debug("submission rejected", zap.String("form", form.ID), zap.Strings("fields", verrs.Fields()))
		s.renderForm(w, r, sess, eng, http.StatusUnprocessableEntity, "")
		return
	}
	s.logger.Info("form submitted", zap.String("form", form.ID))
	s.renderForm(w, r, sess, eng, http.StatusOK, form.SuccessMessage)
}

func (s *server) resetForm(w http.ResponseWriter, r *http.Request, form model.Form) {
	sess, err := s.verifiedSession(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	if eng, ok := sess.engines[form.ID]; ok {
		eng.Reset()
	}
	sess.mu.Unlock()
	http.Redirect(w, r, s.link(form.Route), http.StatusSeeOther)
}

// downloadForm answers 204 when there is nothing to export.
func (s *server) downloadForm(w http.ResponseWriter, r *http.Request, form model.Form) {
	sess, ok := s.existingSession(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	eng, ok := sess.engines[form.ID]
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	export, ok, err := eng.Export()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := download.NewAttachmentWriter(w, r).Download(r.Context(), export); err != nil {
		s.logger.Warn("download failed", zap.String("form", form.ID), zap.Error(err))
	}
}

func (s *server) renderForm(w http.ResponseWriter, r *http.Request, sess *session, eng *engine.Engine, status int, flash string) {
	form := eng.Form()
	snapshot, _ := eng.Snapshot()
	opts := render.RenderOptions{
		Values:       eng.Values(),
		Errors:       eng.Errors().AsMessages(),
		Snapshot:     snapshot,
		Phase:        eng.Phase(),
		Flash:        flash,
		FlashMillis:  form.FlashMillis,
		HiddenFields: render.MergeHiddenFields(nil, render.CSRFToken(sess.csrf), render.FormID(form.ID)),
		Navigation:   s.navigation(s.catalog().List(), form.ID),
		Action:       s.link(form.Route),
		ResetURL:     s.link(form.Route + "/reset"),
		DownloadURL:  s.link(form.Route + "/download"),
		Theme:        s.theme,
	}
	page, err := s.renderer.Render(r.Context(), form, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, status, page)
}

func (s *server) navigation(list []model.Form, activeID string) []render.NavItem {
	items := render.Navigation(list, activeID)
	for i := range items {
		items[i].Route = s.link(items[i].Route)
	}
	return items
}

func (s *server) existingSession(r *http.Request) (*session, bool) {
	cookie, err := r.Cookie(s.opts.CookieName)
	if err != nil {
		return nil, false
	}
	return s.sessions.lookup(cookie.Value)
}

func (s *server) ensureSession(w http.ResponseWriter, r *http.Request) *session {
	if sess, ok := s.existingSession(r); ok {
		return sess
	}
	sess := s.sessions.create()
	path := s.base
	if path == "" {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    sess.id,
		Path:     path,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// verifiedSession parses the posted form and checks its CSRF token.
func (s *server) verifiedSession(w http.ResponseWriter, r *http.Request) (*session, error) {
	sess, ok := s.existingSession(r)
	if !ok {
		return nil, StatusError{Code: http.StatusForbidden, Err: errSessionExpired}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("parse form: %w", err)}
	}
	token := r.PostForm.Get(render.CSRFFieldName)
	if subtle.ConstantTimeCompare([]byte(token), []byte(sess.csrf)) != 1 {
		return nil, StatusError{Code: http.StatusForbidden, Err: errBadCSRF}
	}
	return sess, nil
}

func writeHTML(w http.ResponseWriter, status int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(page)
}
