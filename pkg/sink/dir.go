package sink

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// Dir writes pages and side files as plain files in a directory.
type Dir struct {
	root    string
	written []string
}

// NewDir creates root if needed and returns a sink writing into it.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Dir{root: root}, nil
}

// WritePage writes root/name.png.
func (d *Dir) WritePage(ctx context.Context, name string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	return d.write(PNGName(name), data)
}

// WriteFile writes root/name.
func (d *Dir) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.write(name, data)
}

func (d *Dir) write(name string, data []byte) error {
	p := filepath.Join(d.root, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	d.written = append(d.written, p)
	return nil
}

// Files returns the paths written so far, in order.
func (d *Dir) Files() []string { return d.written }

// Close does nothing for a directory sink.
func (d *Dir) Close() error { return nil }

var _ Sink = (*Dir)(nil)
