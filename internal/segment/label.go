package segment

import (
	"iter"
)

// Unassigned is the label reported for pixels that belong to no segment,
// either because they were masked out or because the algorithm left them as
// noise.
const Unassigned = -1

// LabelImage is the final pixel-to-segment assignment of a segmentation run.
// It is built once and not mutated afterwards.
type LabelImage struct {
	width    int
	height   int
	labels   []int
	segments []*Segment
}

// NewLabelImage builds a label image of width*height pixels from segments.
// Empty segments are dropped, and labels are renumbered densely in the order
// the remaining segments appear. Member indices outside the image are ignored.
// When segments overlap, the first segment to claim a pixel keeps it.
func NewLabelImage(width, height int, segments []*Segment) *LabelImage {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	li := &LabelImage{
		width:  width,
		height: height,
		labels: make([]int, width*height),
	}
	for i := range li.labels {
		li.labels[i] = Unassigned
	}

	for _, seg := range segments {
		if seg == nil || seg.IsEmpty() {
			continue
		}
		label := len(li.segments)
		li.segments = append(li.segments, seg)
		for idx := range seg.Members() {
			if idx < len(li.labels) && li.labels[idx] == Unassigned {
				li.labels[idx] = label
			}
		}
	}
	return li
}

// Width returns the image width in pixels.
func (l *LabelImage) Width() int {
	return l.width
}

// Height returns the image height in pixels.
func (l *LabelImage) Height() int {
	return l.height
}

// Label returns the segment label of pixel index. The boolean is false when
// the pixel is unassigned or index is out of range.
func (l *LabelImage) Label(index int) (int, bool) {
	if index < 0 || index >= len(l.labels) {
		return Unassigned, false
	}
	label := l.labels[index]
	return label, label != Unassigned
}

// Len returns the number of non-empty segments.
func (l *LabelImage) Len() int {
	return len(l.segments)
}

// Segment returns the segment with the given label, or nil.
func (l *LabelImage) Segment(label int) *Segment {
	if label < 0 || label >= len(l.segments) {
		return nil
	}
	return l.segments[label]
}

// Segments yields the non-empty segments in label order.
func (l *LabelImage) Segments() iter.Seq[*Segment] {
	return func(yield func(*Segment) bool) {
		for _, seg := range l.segments {
			if !yield(seg) {
				return
			}
		}
	}
}

// Assigned returns the number of pixels that carry a label.
func (l *LabelImage) Assigned() int {
	n := 0
	for _, label := range l.labels {
		if label != Unassigned {
			n++
		}
	}
	return n
}
