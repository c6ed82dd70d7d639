package formserver

import (
	"errors"
	"net/http"
	"strings"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func asHTTPError(err error) (HTTPError, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil && httpErr.StatusCode() > 0 {
		return httpErr, true
	}
	return nil, false
}

type errorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// writeError answers API paths with JSON and pages with plain text. Server
// errors are logged and their details withheld.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	if httpErr, ok := asHTTPError(err); ok {
		code = httpErr.StatusCode()
	}
	message := http.StatusText(code)
	if code < http.StatusInternalServerError && err != nil {
		message = err.Error()
	} else if err != nil {
		s.logger.Error("request failed", zapError(err), zapPath(r))
	}

	if isAPIPath(r.URL.Path) {
		writeJSON(w, code, errorResponse{Error: message})
		return
	}
	http.Error(w, message, code)
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/openapi.json"
}
