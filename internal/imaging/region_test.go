package imaging

import (
	"image"
	"testing"
)

func TestNamedRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)

	tests := []struct {
		name string
		want Region
	}{
		{"", Region{0, 0, 100, 80}},
		{"full", Region{0, 0, 100, 80}},
		{"top-left", Region{0, 0, 50, 40}},
		{"top-right", Region{50, 0, 100, 40}},
		{"bottom-left", Region{0, 40, 50, 80}},
		{"bottom-right", Region{50, 40, 100, 80}},
		{"top-half", Region{0, 0, 100, 40}},
		{"bottom-half", Region{0, 40, 100, 80}},
		{"left-half", Region{0, 0, 50, 80}},
		{"right-half", Region{50, 0, 100, 80}},
		{"center", Region{25, 20, 75, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NamedRegion(bounds, tt.name)
			if err != nil {
				t.Fatalf("NamedRegion(%q) failed: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("NamedRegion(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
			if err := got.Validate(bounds); err != nil {
				t.Errorf("resolved region does not validate: %v", err)
			}
		})
	}

	if _, err := NamedRegion(bounds, "middle"); err == nil {
		t.Error("expected error for unknown region")
	}
}

func TestNamedRegion_OffsetBounds(t *testing.T) {
	got, err := NamedRegion(image.Rect(10, 20, 31, 41), "bottom-right")
	if err != nil {
		t.Fatalf("NamedRegion failed: %v", err)
	}
	want := Region{20, 30, 31, 41}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRegion_Validate(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)
	tests := []struct {
		name    string
		region  Region
		wantErr bool
	}{
		{"full image", Region{0, 0, 10, 10}, false},
		{"inner", Region{2, 3, 4, 5}, false},
		{"negative origin", Region{-1, 0, 5, 5}, true},
		{"past right edge", Region{0, 0, 11, 5}, true},
		{"empty width", Region{3, 0, 3, 5}, true},
		{"inverted height", Region{0, 6, 5, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate(bounds)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
