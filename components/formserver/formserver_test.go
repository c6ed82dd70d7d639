package formserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-leadforms/components/formserver"
	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var csrfPattern = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

type browser struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, handler http.Handler) *browser {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := server.Client()
	client.Jar = jar
	t.Cleanup(client.CloseIdleConnections)
	return &browser{t: t, server: server, client: client}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.server.URL + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) post(path string, values url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.server.URL+path, values)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) postJSON(path string, payload string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Post(b.server.URL+path, "application/json", strings.NewReader(payload))
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func csrfToken(t *testing.T, page string) string {
	t.Helper()
	match := csrfPattern.FindStringSubmatch(page)
	require.Len(t, match, 2, "page has no csrf token")
	return match[1]
}

func newComponent(t *testing.T, fns ...formserver.OptionFn) *formserver.Component {
	t.Helper()
	fns = append([]formserver.OptionFn{
		formserver.WithEngineOptions(engine.WithClock(testsupport.FixedClock())),
	}, fns...)
	c, err := formserver.New(fns...)
	require.NoError(t, err)
	return c
}

func requiredForm(form map[string]any, token string) url.Values {
	values := url.Values{"_csrf": {token}}
	for name, value := range form {
		values.Set(name, fmt.Sprint(value))
	}
	return values
}

func TestBrowserFlow_SubmitDownloadReset(t *testing.T) {
	b := newBrowser(t, newComponent(t).Handler())
	form := testsupport.Form(t, "lost")

	resp, page := b.get("/lost")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, `action="/lost"`)
	token := csrfToken(t, page)

	resp, _ = b.get("/lost/download")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "nothing to export before submit")

	resp, page = b.post("/lost", url.Values{"_csrf": {token}, "slno": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, page, "Sl.No is required")

	resp, page = b.post("/lost", requiredForm(testsupport.RequiredValues(form), token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, html.EscapeString(form.SuccessMessage))
	assert.Contains(t, page, "Download JSON")

	resp, body := b.get("/lost/download")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, engine.ContentTypeJSON, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "-1705311000250.json")
	var exported map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &exported))
	assert.Equal(t, "2024-01-15T09:30:00.250Z", exported["submittedAt"])
	assert.Equal(t, "12.5", exported["slno"])

	resp, page = b.post("/lost/reset", url.Values{"_csrf": {token}})
	require.Equal(t, http.StatusOK, resp.StatusCode, "reset redirects back to the form")
	assert.NotContains(t, page, "Download JSON")

	resp, _ = b.get("/lost/download")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBrowserFlow_RevisitDiscardsState(t *testing.T) {
	b := newBrowser(t, newComponent(t).Handler())
	form := testsupport.Form(t, "order-received")

	_, page := b.get(form.Route)
	token := csrfToken(t, page)
	resp, _ := b.post(form.Route, requiredForm(testsupport.RequiredValues(form), token))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b.get(form.Route)
	resp, _ = b.get(form.Route + "/download")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBrowserFlow_ReloadedDefinitionReplacesSessionEngine(t *testing.T) {
	source := forms.NewSource(forms.MustBuiltin())
	b := newBrowser(t, newComponent(t, formserver.WithSource(source)).Handler())
	form := testsupport.Form(t, "lost")

	_, page := b.get("/lost")
	token := csrfToken(t, page)

	// Same names and required flags; only the message changes.
	form.Fields[0].RequiredMessage = "Serial number missing"
	doc, err := json.Marshal(map[string]any{"forms": map[string]any{"lost": form}})
	require.NoError(t, err)
	override, err := forms.LoadFS(fstest.MapFS{"lost.json": {Data: doc}})
	require.NoError(t, err)
	reloaded, err := forms.MustBuiltin().Merge(override)
	require.NoError(t, err)
	source.Store(reloaded)

	values := testsupport.RequiredValues(form)
	delete(values, form.Fields[0].Name)
	resp, page := b.post("/lost", requiredForm(values, token))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, page, "Serial number missing")
	assert.NotContains(t, page, "Sl.No is required")
}

func TestBrowserFlow_RejectsBadToken(t *testing.T) {
	b := newBrowser(t, newComponent(t).Handler())

	resp, _ := b.post("/lost", url.Values{"slno": {"1"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "no session yet")

	b.get("/lost")
	resp, _ = b.post("/lost", url.Values{"_csrf": {"forged"}, "slno": {"1"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPages_IndexHealthAssetsAndMisses(t *testing.T) {
	b := newBrowser(t, newComponent(t).Handler())

	resp, page := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, route := range []string{"/budgetary-quotation", "/lead-submitted", "/export-leads", "/crm-leads", "/order-received", "/lost"} {
		assert.Contains(t, page, `href="`+route+`"`)
	}

	resp, body := b.get("/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	resp, body = b.get("/assets/leadforms.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body)

	resp, _ = b.get("/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, b.server.URL+"/lost", nil)
	require.NoError(t, err)
	res, err := b.client.Do(req)
	require.NoError(t, err)
	readBody(t, res)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestAPI_Submissions(t *testing.T) {
	b := newBrowser(t, newComponent(t).Handler())

	resp, body := b.get("/api/forms")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data []struct {
			ID       string `json:"id"`
			Required int    `json:"required"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list.Data, 6)

	resp, body = b.postJSON("/api/forms/lost/submissions", `{"tenderName": "Radar"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var rejected struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &rejected))
	assert.Equal(t, "Sl.No is required", rejected.Errors["slno"])
	assert.NotContains(t, rejected.Errors, "tenderName")

	payload, err := json.Marshal(testsupport.RequiredValues(testsupport.Form(t, "lost")))
	require.NoError(t, err)
	resp, body = b.postJSON("/api/forms/lost/submissions", string(payload))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var accepted struct {
		Data     map[string]any `json:"data"`
		Filename string         `json:"filename"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &accepted))
	assert.Equal(t, "2024-01-15T09:30:00.250Z", accepted.Data["submittedAt"])
	assert.True(t, strings.HasPrefix(accepted.Filename, "lost-"))

	resp, _ = b.postJSON("/api/forms/lost/submissions?download=1", string(payload))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	resp, _ = b.postJSON("/api/forms/lost/submissions", `{"bogus": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = b.postJSON("/api/forms/lost/submissions", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = b.postJSON("/api/forms/nope/submissions", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error"`)
}

func TestAPI_RejectsNonScalarValuesAndTrailingData(t *testing.T) {
	b := newBrowser(t, newComponent(t).Handler())

	cases := map[string]string{
		"object value":  `{"slno": {"a": [1, 2]}, "tenderName": "Radar"}`,
		"array value":   `{"slno": [1, 2], "tenderName": "Radar"}`,
		"trailing data": `{"slno": 1} {"garbage"`,
		"second object": `{"slno": 1} {}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := b.postJSON("/api/forms/lost/submissions", payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
			assert.NotContains(t, body, "map[")
		})
	}
}

func TestAPI_DefinitionsSchemaAndOpenAPI(t *testing.T) {
	b := newBrowser(t, newComponent(t).Handler())

	resp, body := b.get("/api/forms/budgetary-quotation")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"route":"/budgetary-quotation"`)

	resp, body = b.get("/api/forms/lost/schema")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/schema+json", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "2020-12")

	resp, body = b.get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/api/forms/lost/submissions")
	assert.Contains(t, body, "x-formgen")
}

func TestRateLimit(t *testing.T) {
	b := newBrowser(t, newComponent(t, formserver.WithRateLimit(0.001, 1)).Handler())

	resp, _ := b.postJSON("/api/forms/lost/submissions", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp, _ = b.postJSON("/api/forms/lost/submissions", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	resp, _ = b.get("/api/forms")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are not limited")
}

func TestGuard(t *testing.T) {
	guard := func(r *http.Request) error {
		if r.Header.Get("X-Key") != "secret" {
			return formserver.StatusError{Code: http.StatusUnauthorized}
		}
		return nil
	}
	b := newBrowser(t, newComponent(t, formserver.WithGuard(guard)).Handler())

	resp, _ := b.get("/api/forms")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, b.server.URL+"/api/forms", nil)
	require.NoError(t, err)
	req.Header.Set("X-Key", "secret")
	res, err := b.client.Do(req)
	require.NoError(t, err)
	readBody(t, res)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestRegisterRoutes_UnderBasePath(t *testing.T) {
	c := newComponent(t)
	mux := http.NewServeMux()
	pattern, err := c.RegisterRoutes(mux, "forms/")
	require.NoError(t, err)
	assert.Equal(t, "/forms/", pattern)

	b := newBrowser(t, mux)
	resp, page := b.get("/forms/lost")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, `action="/forms/lost"`)
	assert.Contains(t, page, `href="/forms/assets/leadforms.css"`)
	assert.Contains(t, page, `href="/forms/crm-leads"`)

	resp, _ = b.get("/forms/assets/leadforms.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = c.RegisterRoutes(nil, "/")
	assert.Error(t, err)
}

func TestSessions_ExpireAndJanitorStops(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	var offset atomic.Int64
	clock := func() time.Time { return start.Add(time.Duration(offset.Load())) }
	c := newComponent(t,
		formserver.WithNow(clock),
		formserver.WithSessionTTL(time.Minute),
		formserver.WithJanitorInterval(10*time.Millisecond),
	)

	b := newBrowser(t, c.Handler())
	_, page := b.get("/lost")
	token := csrfToken(t, page)
	assert.Equal(t, 0, c.Sweep())

	offset.Store(int64(2 * time.Minute))
	assert.Equal(t, 1, c.Sweep())

	resp, _ := b.post("/lost", url.Values{"_csrf": {token}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "expired sessions cannot submit")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	c.Start(ctx)
	c.Stop()
	c.Stop()
}
