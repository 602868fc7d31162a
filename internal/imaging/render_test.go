package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// labelByColor builds one segment per distinct colour of features, leaving
// masked pixels out.
func labelByColor(t *testing.T, f *Features) *segment.LabelImage {
	t.Helper()
	byHex := map[string]*segment.Segment{}
	var order []*segment.Segment
	for i, p := range f.Points {
		if !f.Mask[i] {
			continue
		}
		hex := f.Color(p).Hex()
		seg, ok := byHex[hex]
		if !ok {
			seg = segment.New(len(p))
			byHex[hex] = seg
			order = append(order, seg)
		}
		seg.Insert(i, p)
	}
	return segment.NewLabelImage(f.Width, f.Height, order)
}

func decodePNG(t *testing.T, b64 string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestRenderLabels_MeanColors(t *testing.T) {
	f, err := ExtractFeatures(quadrants(6, 4), FeatureOptions{})
	require.NoError(t, err)
	labels := labelByColor(t, f)
	require.Equal(t, 4, labels.Len())

	res, err := RenderLabels(f, labels, RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Width)
	assert.Equal(t, 4, res.Height)
	assert.Equal(t, 4, res.Segments)
	assert.Equal(t, "image/png", res.MimeType)

	img := decodePNG(t, res.ImageBase64)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, nrgbaAt(img, 0, 0))
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, nrgbaAt(img, 5, 0))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, nrgbaAt(img, 0, 3))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, nrgbaAt(img, 5, 3))
}

func TestRenderLabels_MaskedPixelsTransparent(t *testing.T) {
	src := quadrants(4, 4)
	src.SetNRGBA(1, 1, color.NRGBA{255, 0, 0, 0})

	f, err := ExtractFeatures(src, FeatureOptions{MinAlpha: 1})
	require.NoError(t, err)

	res, err := RenderLabels(f, labelByColor(t, f), RenderOptions{})
	require.NoError(t, err)

	img := decodePNG(t, res.ImageBase64)
	assert.Equal(t, uint8(0), nrgbaAt(img, 1, 1).A)
	assert.Equal(t, uint8(255), nrgbaAt(img, 0, 0).A)
}

func TestRenderLabels_Boundaries(t *testing.T) {
	f, err := ExtractFeatures(quadrants(6, 4), FeatureOptions{})
	require.NoError(t, err)

	magenta := color.NRGBA{255, 0, 255, 255}
	res, err := RenderLabels(f, labelByColor(t, f), RenderOptions{Boundaries: true, BoundaryColor: magenta})
	require.NoError(t, err)

	img := decodePNG(t, res.ImageBase64)
	// (2, 0) is the last red column; (0, 1) the last red row.
	assert.Equal(t, magenta, nrgbaAt(img, 2, 0))
	assert.Equal(t, magenta, nrgbaAt(img, 0, 1))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, nrgbaAt(img, 0, 0))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, nrgbaAt(img, 5, 3))
}

func TestRenderLabels_SizeMismatch(t *testing.T) {
	f, err := ExtractFeatures(quadrants(4, 4), FeatureOptions{})
	require.NoError(t, err)

	_, err = RenderLabels(f, segment.NewLabelImage(3, 4, nil), RenderOptions{})
	assert.Error(t, err)
}
