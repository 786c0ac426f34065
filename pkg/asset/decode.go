package asset

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/matzehuels/gangsheet/pkg/cache"
	"github.com/matzehuels/gangsheet/pkg/errors"
)

// Default decode limits. Dimensions are checked from the header before any
// pixels are decoded, so an oversized file is rejected cheaply.
const (
	DefaultMaxPixels = 180_000_000
	DefaultMaxBytes  = 256 << 20
)

// Option configures decoding.
type Option func(*decoder)

type decoder struct {
	maxPixels int
	maxBytes  int64
}

// WithMaxPixels caps width*height of a decoded design.
func WithMaxPixels(n int) Option {
	return func(d *decoder) { d.maxPixels = n }
}

// WithMaxBytes caps the size of the encoded design file.
func WithMaxBytes(n int64) Option {
	return func(d *decoder) { d.maxBytes = n }
}

// Decode reads an encoded design, decodes it and crops it to its visible
// content. A fully transparent design decodes successfully into an empty
// asset; rejecting it is the catalog's decision.
func Decode(name string, r io.Reader, opts ...Option) (*Asset, error) {
	d := decoder{maxPixels: DefaultMaxPixels, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(&d)
	}

	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read %s", name)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, errors.New(errors.ErrCodeAssetTooLarge, "%s exceeds %d bytes", name, d.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode %s", name)
	}
	if cfg.Width*cfg.Height > d.maxPixels {
		return nil, errors.New(errors.ErrCodeAssetTooLarge, "%s is %dx%d, above the %d pixel limit",
			name, cfg.Width, cfg.Height, d.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode %s", name)
	}

	return &Asset{
		ID:     cache.Hash(data),
		Name:   name,
		Format: format,
		Image:  Crop(img),
	}, nil
}

// DecodePNG restores an asset previously serialised with [Asset.EncodePNG].
// The pixels are taken as already cropped.
func DecodePNG(id, name string, data []byte) (*Asset, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode cached %s", name)
	}
	return &Asset{ID: id, Name: name, Format: "png", Image: imaging.Clone(img)}, nil
}

// Crop trims the fully transparent border of img. Opaque images come back
// unchanged (as NRGBA); a fully transparent image yields a 0x0 image.
func Crop(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	box, ok := alphaBounds(src)
	if !ok {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	if box == src.Bounds() {
		return src
	}
	return imaging.Crop(src, box)
}

// alphaBounds returns the smallest rectangle containing every pixel with
// non-zero alpha.
func alphaBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
