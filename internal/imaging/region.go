package imaging

import (
	"fmt"
	"image"
)

// Region is a rectangle within an image. (X1, Y1) is the inclusive top-left
// corner and (X2, Y2) the exclusive bottom-right corner.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect returns r as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Validate checks that r is non-empty and lies inside bounds.
func (r Region) Validate(bounds image.Rectangle) error {
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	return nil
}

// NamedRegion resolves a named part of bounds: "full", "top-left",
// "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half",
// "left-half", "right-half" or "center" (the middle 50% on both axes).
func NamedRegion(bounds image.Rectangle, name string) (Region, error) {
	x0, y0 := bounds.Min.X, bounds.Min.Y
	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := x0+w/2, y0+h/2
	right, bottom := bounds.Max.X, bounds.Max.Y

	switch name {
	case "", "full":
		return Region{x0, y0, right, bottom}, nil
	case "top-left":
		return Region{x0, y0, midX, midY}, nil
	case "top-right":
		return Region{midX, y0, right, midY}, nil
	case "bottom-left":
		return Region{x0, midY, midX, bottom}, nil
	case "bottom-right":
		return Region{midX, midY, right, bottom}, nil
	case "top-half":
		return Region{x0, y0, right, midY}, nil
	case "bottom-half":
		return Region{x0, midY, right, bottom}, nil
	case "left-half":
		return Region{x0, y0, midX, bottom}, nil
	case "right-half":
		return Region{midX, y0, right, bottom}, nil
	case "center":
		qW, qH := w/4, h/4
		return Region{x0 + qW, y0 + qH, right - qW, bottom - qH}, nil
	default:
		return Region{}, fmt.Errorf("unknown region: %s", name)
	}
}
