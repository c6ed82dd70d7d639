package formserver

import (
	"net/http"
	"strings"
	"time"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

func normaliseBase(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/")
}

func mountPath(basePath, routePath string) string {
	routePath = strings.TrimSpace(routePath)
	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	base := normaliseBase(basePath)
	if base == "" {
		return routePath
	}
	return base + routePath
}

func newTicker(interval time.Duration) *time.Ticker {
	if interval <= 0 {
		interval = time.Minute
	}
	return time.NewTicker(interval)
}
