package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// RenderResult is a label image painted as a PNG and encoded as base64.
type RenderResult struct {
	// Width of the output image in pixels (same as the feature grid).
	Width int `json:"width"`

	// Height of the output image in pixels (same as the feature grid).
	Height int `json:"height"`

	// Segments is the number of segments painted.
	Segments int `json:"segments"`

	// ImageBase64 is the rendered PNG encoded as base64.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// RenderOptions controls RenderLabels.
type RenderOptions struct {
	// Boundaries draws pixels that border a different segment in
	// BoundaryColor.
	Boundaries bool

	// BoundaryColor defaults to opaque black.
	BoundaryColor color.NRGBA
}

// RenderLabels paints every labelled pixel with the mean colour of its
// segment. Unlabelled pixels (masked out or left as outliers) are fully
// transparent. labels must have the same size as features.
func RenderLabels(features *Features, labels *segment.LabelImage, opts RenderOptions) (*RenderResult, error) {
	w, h := features.Width, features.Height
	if labels.Width() != w || labels.Height() != h {
		return nil, fmt.Errorf("label image %dx%d does not match features %dx%d",
			labels.Width(), labels.Height(), w, h)
	}

	palette := make([]color.NRGBA, 0, labels.Len())
	for seg := range labels.Segments() {
		palette = append(palette, features.Color(seg.Center()).NRGBA())
	}

	boundary := opts.BoundaryColor
	if boundary == (color.NRGBA{}) {
		boundary = color.NRGBA{A: 255}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			label, ok := labels.Label(y*w + x)
			if !ok {
				continue
			}
			c := palette[label]
			if opts.Boundaries && isBoundary(labels, x, y, label) {
				c = boundary
			}
			out.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode label image: %w", err)
	}

	return &RenderResult{
		Width:       w,
		Height:      h,
		Segments:    labels.Len(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// isBoundary reports whether the right or lower neighbour of (x, y) carries a
// different label. Unlabelled neighbours count as different.
func isBoundary(labels *segment.LabelImage, x, y, label int) bool {
	w, h := labels.Width(), labels.Height()
	if x+1 < w {
		if l, _ := labels.Label(y*w + x + 1); l != label {
			return true
		}
	}
	if y+1 < h {
		if l, _ := labels.Label((y+1)*w + x); l != label {
			return true
		}
	}
	return false
}
