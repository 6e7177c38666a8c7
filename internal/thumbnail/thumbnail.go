// Package thumbnail generates small preview images for uploaded files.
// Previews are produced before encryption so the stored thumbnail is
// just another opaque blob to the backend.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// register decoders for the formats we accept
	_ "image/gif"
	_ "image/jpeg"

	"image/png"
)

// MaxEdge is the longest side of a generated preview in pixels.
const MaxEdge = 128

// Generator produces a preview for file content of the given media type.
type Generator interface {
	Thumbnail(data []byte, contentType string) ([]byte, error)
}

// IsImageContent reports whether a media type is one previews can be
// generated for.
func IsImageContent(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// Resizer is a Generator that downscales images with nearest-neighbor
// sampling and encodes the result as PNG.
type Resizer struct{}

func NewResizer() *Resizer {
	return &Resizer{}
}

func (r *Resizer) Thumbnail(data []byte, contentType string) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := src.Bounds()
	if b.Dx() > MaxEdge || b.Dy() > MaxEdge {
		w, h := targetSize(b.Dx(), b.Dy())
		src = scaleDown(src, w, h)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("encoding preview: %w", err)
	}
	return buf.Bytes(), nil
}

// targetSize shrinks w x h so the longest edge becomes MaxEdge,
// keeping the aspect ratio.
func targetSize(w, h int) (int, int) {
	if w >= h {
		nh := h * MaxEdge / w
		if nh < 1 {
			nh = 1
		}
		return MaxEdge, nh
	}
	nw := w * MaxEdge / h
	if nw < 1 {
		nw = 1
	}
	return nw, MaxEdge
}

func scaleDown(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	for y := 0; y < h; y++ {
		sy := sb.Min.Y + y*sb.Dy()/h
		for x := 0; x < w; x++ {
			sx := sb.Min.X + x*sb.Dx()/w
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
