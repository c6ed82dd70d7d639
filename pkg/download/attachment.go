package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gowebpki/jcs"

	"github.com/goliatone/go-leadforms/pkg/engine"
)

// AttachmentWriter sends an export as a browser download.
type AttachmentWriter struct {
	w http.ResponseWriter
	r *http.Request
}

var _ engine.Downloader = (*AttachmentWriter)(nil)

// NewAttachmentWriter writes to w. When r is non-nil, a matching
// If-None-Match header yields 304 Not Modified.
func NewAttachmentWriter(w http.ResponseWriter, r *http.Request) *AttachmentWriter {
	return &AttachmentWriter{w: w, r: r}
}

// Download writes headers and body.
func (a *AttachmentWriter) Download(ctx context.Context, export engine.Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tag, err := ETag(export.Data)
	if err != nil {
		return err
	}

	header := a.w.Header()
	header.Set("ETag", tag)
	header.Set("Cache-Control", "no-store")
	if a.r != nil && etagMatches(a.r.Header.Get("If-None-Match"), tag) {
		a.w.WriteHeader(http.StatusNotModified)
		return nil
	}

	contentType := export.ContentType
	if contentType == "" {
		contentType = engine.ContentTypeJSON
	}
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", ContentDisposition(export.Filename))
	header.Set("Content-Length", strconv.Itoa(len(export.Data)))
	header.Set("X-Content-Type-Options", "nosniff")
	a.w.WriteHeader(http.StatusOK)
	if _, err := a.w.Write(export.Data); err != nil {
		return fmt.Errorf("download: write response: %w", err)
	}
	return nil
}

// ContentDisposition formats an attachment header for filename.
func ContentDisposition(filename string) string {
	value := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if value == "" {
		return "attachment"
	}
	return value
}

// ETag returns a strong entity tag over the RFC 8785 canonical form of
// data, so formatting differences do not change the tag.
func ETag(data []byte) (string, error) {
	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("download: canonicalise export: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}
