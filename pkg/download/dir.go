package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/engine"
)

// ErrExists is returned when the target file is already present.
var ErrExists = errors.New("download: file already exists")

// DirOption configures a DirWriter.
type DirOption func(*DirWriter)

// WithDirLogger logs every written file.
func WithDirLogger(logger *zap.Logger) DirOption {
	return func(d *DirWriter) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithOnWritten is called with the path of every file written.
func WithOnWritten(fn func(path string)) DirOption {
	return func(d *DirWriter) {
		d.onWritten = fn
	}
}

// DirWriter writes exports into a directory, one file per export.
type DirWriter struct {
	dir       string
	logger    *zap.Logger
	onWritten func(string)
}

var _ engine.Downloader = (*DirWriter)(nil)

// NewDirWriter targets dir, which is created on first use.
func NewDirWriter(dir string, options ...DirOption) *DirWriter {
	d := &DirWriter{
		dir:    strings.TrimSpace(dir),
		logger: zap.NewNop(),
	}
	if d.dir == "" {
		d.dir = "."
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Dir reports the target directory.
func (d *DirWriter) Dir() string {
	return d.dir
}

// Path reports where an export would be written.
func (d *DirWriter) Path(export engine.Export) string {
	return filepath.Join(d.dir, filepath.Base(export.Filename))
}

// Download writes the export. Existing files are never overwritten.
func (d *DirWriter) Download(ctx context.Context, export engine.Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(export.Filename) == "" {
		return errors.New("download: export has no filename")
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("download: create %s: %w", d.dir, err)
	}

	path := d.Path(export)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("download: open %s: %w", path, err)
	}
	if _, err := file.Write(export.Data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("download: write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("download: close %s: %w", path, err)
	}

	d.logger.Info("export written", zap.String("path", path), zap.Int("bytes", len(export.Data)))
	if d.onWritten != nil {
		d.onWritten(path)
	}
	return nil
}
