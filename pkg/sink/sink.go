// Package sink receives composed pages and side files as a run produces them.
//
// A run hands each page to the sink as soon as it is composed and then drops
// its reference, so a sink must finish with the pixels before WritePage
// returns. This is what keeps peak memory at one page no matter how long the
// roll is.
//
// Implementations:
//   - [Zip]: streams a zip archive to any io.Writer (a file, an HTTP response)
//   - [Dir]: writes PNG files into a directory
//   - [Memory]: keeps encoded PNGs in memory, for previews and tests
package sink

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/gangsheet/pkg/errors"
)

// Sink consumes the outputs of a montage run.
type Sink interface {
	// WritePage encodes img as PNG under name (without extension).
	WritePage(ctx context.Context, name string, img image.Image) error

	// WriteFile stores a side file such as the manifest or summary.
	WriteFile(ctx context.Context, name string, data []byte) error

	// Close flushes the sink. No writes may follow.
	Close() error
}

// EncodePNG encodes img as PNG, keeping the alpha channel.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// PNGName appends the .png extension to a page name.
func PNGName(name string) string {
	return name + ".png"
}
