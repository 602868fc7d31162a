package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorSpace selects the perceptual space pixel colours are mapped into
// before clustering. Every space yields lightness in [0, 1] followed by two
// chroma axes.
type ColorSpace string

const (
	SpaceLab   ColorSpace = "lab"
	SpaceOkLab ColorSpace = "oklab"
	SpaceLuv   ColorSpace = "luv"
)

// ParseColorSpace maps a case-insensitive name to a ColorSpace. The empty
// string selects SpaceLab.
func ParseColorSpace(name string) (ColorSpace, error) {
	switch s := ColorSpace(strings.ToLower(strings.TrimSpace(name))); s {
	case "":
		return SpaceLab, nil
	case SpaceLab, SpaceOkLab, SpaceLuv:
		return s, nil
	default:
		return "", fmt.Errorf("unknown color space: %q", name)
	}
}

// Encode converts c into the three coordinates of s.
func (s ColorSpace) Encode(c colorful.Color) (float64, float64, float64) {
	switch s {
	case SpaceOkLab:
		return c.OkLab()
	case SpaceLuv:
		return c.Luv()
	default:
		return c.Lab()
	}
}

// Decode converts coordinates of s back into an sRGB colour, clamped into
// gamut.
func (s ColorSpace) Decode(l, a, b float64) colorful.Color {
	var c colorful.Color
	switch s {
	case SpaceOkLab:
		c = colorful.OkLab(l, a, b)
	case SpaceLuv:
		c = colorful.Luv(l, a, b)
	default:
		c = colorful.Lab(l, a, b)
	}
	return c.Clamped()
}

// RGBColor is an sRGB colour with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ToRGB quantizes c to 8 bits per channel.
func ToRGB(c colorful.Color) RGBColor {
	r, g, b := c.Clamped().RGB255()
	return RGBColor{R: r, G: g, B: b}
}

// Hex formats c as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NRGBA returns c as an opaque color.NRGBA.
func (c RGBColor) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional
// and a missing alpha means opaque.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	alpha := uint8(255)
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: want 6 or 8 digits", hex)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
