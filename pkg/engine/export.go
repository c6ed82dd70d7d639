package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ContentTypeJSON is the media type of exported snapshots.
const ContentTypeJSON = "application/json"

// Export is a rendered snapshot ready to be handed to a Downloader.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	Snapshot    Snapshot
}

// Downloader delivers an export to the user: a browser attachment, a file on
// disk, and so on.
type Downloader interface {
	Download(ctx context.Context, export Export) error
}

// DownloaderFunc adapts a function into a Downloader.
type DownloaderFunc func(ctx context.Context, export Export) error

// Download calls the underlying function.
func (fn DownloaderFunc) Download(ctx context.Context, export Export) error {
	return fn(ctx, export)
}

// Export renders the current snapshot. The boolean is false when no snapshot
// exists; that is not an error.
func (e *Engine) Export() (Export, bool, error) {
	if e.snapshot == nil {
		return Export{}, false, nil
	}
	data, err := e.snapshot.Indented()
	if err != nil {
		return Export{}, false, fmt.Errorf("engine: encode snapshot: %w", err)
	}
	return Export{
		Filename:    e.filename(*e.snapshot),
		ContentType: ContentTypeJSON,
		Data:        data,
		Snapshot:    *e.snapshot,
	}, true, nil
}

// ExportTo hands the current snapshot to d. Without a snapshot it does
// nothing and returns nil.
func (e *Engine) ExportTo(ctx context.Context, d Downloader) error {
	export, ok, err := e.Export()
	if err != nil || !ok {
		return err
	}
	if d == nil {
		return fmt.Errorf("engine: downloader is required")
	}
	return d.Download(ctx, export)
}

// filename builds <prefix>-<field value|fallback|form id>-<epoch ms>.json
// using the current clock, not the submission time.
func (e *Engine) filename(snapshot Snapshot) string {
	rule := e.form.Filename
	middle := ""
	if rule.Field != "" {
		if value, ok := snapshot.Get(rule.Field); ok {
			middle = displayValue(value)
		}
	}
	if middle == "" {
		middle = rule.Fallback
	}
	if middle == "" {
		middle = e.form.ID
	}
	millis := e.cfg.clock().UnixMilli()
	return sanitizeFilename(rule.Prefix) + "-" + sanitizeFilename(middle) + "-" + strconv.FormatInt(millis, 10) + ".json"
}

func sanitizeFilename(part string) string {
	part = strings.TrimSpace(part)
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, part)
}
