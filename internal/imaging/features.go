package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-palette-mcp/internal/point"
)

// ColorDims is the number of leading colour coordinates in every feature
// point. The two coordinates after them are the scaled pixel position.
const ColorDims = 3

// FeatureOptions controls how an image is turned into feature points.
type FeatureOptions struct {
	// Region restricts extraction to part of the image. Nil means the whole
	// image.
	Region *Region

	// MaxDimension downscales the (cropped) image so that neither side
	// exceeds it. Zero disables downscaling.
	MaxDimension int

	// Blur is the radius of a Gaussian blur applied before conversion. Zero
	// disables blurring.
	Blur float64

	// Space is the colour space of the first ColorDims coordinates.
	Space ColorSpace

	// SpatialWeight scales the x and y coordinates, which are otherwise
	// normalized into [0, 1]. Zero makes clustering ignore position.
	SpatialWeight float64

	// MinAlpha masks out pixels whose 8-bit alpha is below it. Zero keeps
	// every pixel.
	MinAlpha uint8
}

// Features is an image flattened into row-major feature points.
type Features struct {
	Width  int
	Height int

	// Points holds Width*Height points of dimension ColorDims+2.
	Points []point.Point

	// Mask is false for pixels excluded by MinAlpha.
	Mask []bool

	Space         ColorSpace
	SpatialWeight float64

	// Image is the cropped, scaled and blurred image the points were taken
	// from.
	Image *image.NRGBA

	// Origin is the top-left corner of the extracted region in the source
	// image, and Scale the number of source pixels per feature pixel.
	Origin image.Point
	Scale  float64
}

// ExtractFeatures crops, downscales and blurs img as opts ask, then converts
// every pixel into a point of colour coordinates followed by its weighted,
// normalized position. An image without pixels yields empty Features.
func ExtractFeatures(img image.Image, opts FeatureOptions) (*Features, error) {
	space, err := ParseColorSpace(string(opts.Space))
	if err != nil {
		return nil, err
	}
	if opts.MaxDimension < 0 {
		return nil, fmt.Errorf("max dimension must not be negative, got %d", opts.MaxDimension)
	}
	if math.IsNaN(opts.Blur) || opts.Blur < 0 {
		return nil, fmt.Errorf("blur radius must not be negative, got %v", opts.Blur)
	}
	if math.IsNaN(opts.SpatialWeight) || math.IsInf(opts.SpatialWeight, 0) || opts.SpatialWeight < 0 {
		return nil, fmt.Errorf("spatial weight must be finite and not negative, got %v", opts.SpatialWeight)
	}

	bounds := img.Bounds()
	origin := bounds.Min
	var src image.Image = img
	if opts.Region != nil {
		if err := opts.Region.Validate(bounds); err != nil {
			return nil, err
		}
		src = imaging.Crop(img, opts.Region.Rect())
		origin = image.Pt(opts.Region.X1, opts.Region.Y1)
	}

	features := &Features{Space: space, SpatialWeight: opts.SpatialWeight, Origin: origin, Scale: 1}
	srcW := src.Bounds().Dx()
	if srcW == 0 || src.Bounds().Dy() == 0 {
		features.Image = image.NewNRGBA(image.Rect(0, 0, 0, 0))
		return features, nil
	}

	if m := opts.MaxDimension; m > 0 && (srcW > m || src.Bounds().Dy() > m) {
		src = imaging.Fit(src, m, m, imaging.Lanczos)
	}
	if opts.Blur > 0 {
		src = blur.Gaussian(src, opts.Blur)
	}

	pixels := imaging.Clone(src)
	w, h := pixels.Bounds().Dx(), pixels.Bounds().Dy()
	features.Width = w
	features.Height = h
	features.Image = pixels
	features.Scale = float64(srcW) / float64(w)
	features.Points = make([]point.Point, w*h)
	features.Mask = make([]bool, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := pixels.PixOffset(x, y)
			px := pixels.Pix[o : o+4 : o+4]
			c := colorful.Color{
				R: float64(px[0]) / 255,
				G: float64(px[1]) / 255,
				B: float64(px[2]) / 255,
			}
			l, a, b := space.Encode(c)

			i := y*w + x
			features.Points[i] = point.Point{
				l, a, b,
				normalize(x, w) * opts.SpatialWeight,
				normalize(y, h) * opts.SpatialWeight,
			}
			features.Mask[i] = px[3] >= opts.MinAlpha
		}
	}
	return features, nil
}

// normalize maps v in [0, n) onto [0, 1].
func normalize(v, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(v) / float64(n-1)
}

// Eligible returns the number of pixels the mask keeps.
func (f *Features) Eligible() int {
	n := 0
	for _, keep := range f.Mask {
		if keep {
			n++
		}
	}
	return n
}

// SourcePosition maps feature pixel index idx back to coordinates in the
// source image.
func (f *Features) SourcePosition(idx int) image.Point {
	return f.SourceXY(float64(idx%f.Width), float64(idx/f.Width))
}

// SourceXY maps a mean feature-pixel position back into the source image.
func (f *Features) SourceXY(x, y float64) image.Point {
	return image.Pt(
		f.Origin.X+int(math.Floor((x+0.5)*f.Scale)),
		f.Origin.Y+int(math.Floor((y+0.5)*f.Scale)),
	)
}

// Color returns the sRGB colour of a feature point.
func (f *Features) Color(p point.Point) RGBColor {
	return ToRGB(f.Space.Decode(p[0], p[1], p[2]))
}
