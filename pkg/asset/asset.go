// Package asset turns uploaded design files into cropped, resizable artwork.
//
// An [Asset] is the immutable result of decoding a design, trimming its
// fully transparent border, and remembering its natural aspect ratio. One
// asset backs every copy of a design; the layout engine only needs
// [Asset.Aspect] and, at composition time, [Asset.Resize].
//
// Decoding accepts PNG, JPEG and GIF from the standard library plus WebP,
// BMP and TIFF from golang.org/x/image. Resampling uses Lanczos filtering
// from github.com/disintegration/imaging.
package asset

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/gangsheet/pkg/cache"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/layout"
)

// Asset is a decoded design with its transparent border removed.
type Asset struct {
	ID     string // content hash of the source bytes
	Name   string // display name, usually the uploaded file name
	Format string // source format reported by the decoder ("png", "jpeg", ...)
	Image  *image.NRGBA
}

// Width returns the cropped pixel width.
func (a *Asset) Width() int { return a.Image.Bounds().Dx() }

// Height returns the cropped pixel height.
func (a *Asset) Height() int { return a.Image.Bounds().Dy() }

// Empty reports whether cropping left no visible content.
func (a *Asset) Empty() bool {
	return a == nil || a.Image == nil || a.Width() == 0 || a.Height() == 0
}

// Aspect returns the natural height:width ratio of the cropped content.
// It returns 0 for an empty asset.
func (a *Asset) Aspect() float64 {
	if a.Empty() {
		return 0
	}
	return float64(a.Height()) / float64(a.Width())
}

// Resize returns the asset resampled to exactly the box size.
func (a *Asset) Resize(b layout.Box) *image.NRGBA {
	if a.Width() == b.W && a.Height() == b.H {
		return a.Image
	}
	return imaging.Resize(a.Image, b.W, b.H, imaging.Lanczos)
}

// EncodePNG serialises the cropped pixels, for caching.
func (a *Asset) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, a.Image, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode asset %s", a.Name)
	}
	return buf.Bytes(), nil
}

// FromImage crops img to its visible content and wraps it as an asset.
// The ID is derived from the cropped pixels.
func FromImage(name string, img image.Image) *Asset {
	cropped := Crop(img)
	return &Asset{
		ID:     cache.Hash(cropped.Pix),
		Name:   name,
		Format: "image",
		Image:  cropped,
	}
}
