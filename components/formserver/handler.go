package formserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/renderers/vanilla"
)

// server is the routing core shared by Handler and RegisterRoutes. base is
// the mount prefix used when building links.
type server struct {
	opts     Options
	base     string
	renderer *vanilla.Renderer
	theme    *theme.RendererConfig
	sessions *sessionStore
	limiter  *ipLimiter
	logger   *zap.Logger
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /api/forms", s.handleListForms)
	mux.HandleFunc("GET /api/forms/{id}", s.handleGetForm)
	mux.HandleFunc("GET /api/forms/{id}/schema", s.handleSchema)
	mux.HandleFunc("POST /api/forms/{id}/submissions", s.handleSubmitJSON)
	mux.HandleFunc("/", s.handleFormRoute)

	return s.withRecovery(s.withLogging(s.withGuard(s.withRateLimit(mux))))
}

func (s *server) catalog() *forms.Catalog {
	if s.opts.Source == nil {
		return forms.NewCatalog()
	}
	return s.opts.Source.Catalog()
}

// link prefixes an absolute path with the mount base.
func (s *server) link(path string) string {
	if s.base == "" {
		return path
	}
	return s.base + path
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"forms":    s.catalog().Len(),
		"sessions": s.sessions.len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func zapPath(r *http.Request) zap.Field {
	if r == nil || r.URL == nil {
		return zap.Skip()
	}
	return zap.String("path", r.URL.Path)
}

// splitAction maps /lost/reset to ("/lost", "reset").
func splitAction(path string) (string, string) {
	for _, action := range []string{"reset", "download"} {
		if trimmed, ok := strings.CutSuffix(path, "/"+action); ok {
			return trimmed, action
		}
	}
	return path, ""
}
