package storage

import (
	"bytes"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const maxLogoDim = 512

// EncodeLogoWebp decodes an uploaded image, scales it down to fit the logo
// bounding box, and re-encodes it as webp. Uploads are normalized to one
// format so the directory never serves multi-megabyte originals.
func EncodeLogoWebp(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxLogoDim || h > maxLogoDim {
		scale := float64(maxLogoDim) / float64(w)
		if h > w {
			scale = float64(maxLogoDim) / float64(h)
		}

		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, src, &webp.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	return buf.Bytes(), nil
}
