package sink

import (
	"context"
	"fmt"
	"image"
	"io"
	"path"
	"time"

	"github.com/klauspost/compress/zip"
)

// Zip writes every page and side file into a single zip archive. PNG data is
// already deflated, so pages are stored; text files are compressed.
type Zip struct {
	zw       *zip.Writer
	modified time.Time
	closed   bool
}

// NewZip starts an archive on w. The caller still owns w and must close it
// after [Zip.Close].
func NewZip(w io.Writer) *Zip {
	return &Zip{zw: zip.NewWriter(w), modified: time.Now()}
}

// WritePage encodes img and stores it as name.png.
func (z *Zip) WritePage(ctx context.Context, name string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	return z.add(PNGName(name), data, zip.Store)
}

// WriteFile stores data under name, deflated unless it is a PNG.
func (z *Zip) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	method := zip.Deflate
	if path.Ext(name) == ".png" {
		method = zip.Store
	}
	return z.add(name, data, method)
}

func (z *Zip) add(name string, data []byte, method uint16) error {
	if z.closed {
		return fmt.Errorf("zip: write %s after close", name)
	}
	w, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: z.modified,
	})
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("zip: write %s: %w", name, err)
	}
	return nil
}

// Close writes the central directory.
func (z *Zip) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true
	return z.zw.Close()
}

var _ Sink = (*Zip)(nil)
