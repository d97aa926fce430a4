// Package frames prepares camera stills for the live session: frames are
// downsampled to roughly one-third linear resolution and recompressed as
// low-quality JPEG before being multiplexed onto the audio stream.
package frames

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	// scaleDivisor shrinks each dimension to a third.
	scaleDivisor = 3
	// jpegQuality keeps frame payloads small; legibility is all the model needs.
	jpegQuality = 40
)

// Downscale decodes an image, shrinks it to ~1/3 linear resolution and
// re-encodes it as low-quality JPEG. Inputs smaller than the divisor in
// either dimension are re-encoded at original size.
func Downscale(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	bounds := src.Bounds()
	w := bounds.Dx() / scaleDivisor
	h := bounds.Dy() / scaleDivisor
	if w < 1 || h < 1 {
		w = bounds.Dx()
		h = bounds.Dy()
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
