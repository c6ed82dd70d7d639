package download_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-leadforms/pkg/download"
	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/testsupport"
)

func sampleExport(t *testing.T) engine.Export {
	t.Helper()
	form := testsupport.Form(t, "lost")
	eng, err := engine.New(form, engine.WithClock(testsupport.FixedClock()))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if err := eng.SetValues(testsupport.RequiredValues(form)); err != nil {
		t.Fatalf("set values: %v", err)
	}
	if _, err := eng.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	export, ok, err := eng.Export()
	if err != nil || !ok {
		t.Fatalf("export: ok=%v err=%v", ok, err)
	}
	return export
}

func TestDirWriter_WritesOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	export := sampleExport(t)

	var written []string
	writer := download.NewDirWriter(dir, download.WithOnWritten(func(path string) {
		written = append(written, path)
	}))

	if err := writer.Download(context.Background(), export); err != nil {
		t.Fatalf("download: %v", err)
	}
	path := writer.Path(export)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != string(export.Data) {
		t.Fatalf("file content differs from export")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o600 != 0o600 {
		t.Fatalf("unexpected mode %v", info.Mode())
	}
	if len(written) != 1 || written[0] != path {
		t.Fatalf("unexpected hook calls %v", written)
	}

	if err := writer.Download(context.Background(), export); !errors.Is(err, download.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestDirWriter_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	writer := download.NewDirWriter(dir)
	export := engine.Export{Filename: "../escape.json", Data: []byte("{}")}
	if err := writer.Download(context.Background(), export); err != nil {
		t.Fatalf("download: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.json")); err != nil {
		t.Fatalf("expected file inside dir: %v", err)
	}
}

func TestDirWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := download.NewDirWriter(t.TempDir()).Download(ctx, sampleExport(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAttachmentWriter(t *testing.T) {
	export := sampleExport(t)
	rec := httptest.NewRecorder()

	if err := download.NewAttachmentWriter(rec, nil).Download(context.Background(), export); err != nil {
		t.Fatalf("download: %v", err)
	}
	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	if got := res.Header.Get("Content-Type"); got != engine.ContentTypeJSON {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := res.Header.Get("Content-Disposition"); !strings.HasPrefix(got, "attachment; filename=") || !strings.Contains(got, export.Filename) {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Body.String() != string(export.Data) {
		t.Fatalf("body differs from export")
	}

	tag := res.Header.Get("ETag")
	req := httptest.NewRequest(http.MethodGet, "/lost/download", nil)
	req.Header.Set("If-None-Match", tag)
	rec = httptest.NewRecorder()
	if err := download.NewAttachmentWriter(rec, req).Download(context.Background(), export); err != nil {
		t.Fatalf("conditional download: %v", err)
	}
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 304, got %d with %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestETag_IgnoresFormatting(t *testing.T) {
	compact, err := download.ETag([]byte(`{"b":1,"a":"x"}`))
	if err != nil {
		t.Fatalf("etag: %v", err)
	}
	indented, err := download.ETag([]byte("{\n  \"a\": \"x\",\n  \"b\": 1\n}"))
	if err != nil {
		t.Fatalf("etag: %v", err)
	}
	if compact != indented {
		t.Fatalf("expected equal tags, got %s and %s", compact, indented)
	}
	if _, err := download.ETag([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
