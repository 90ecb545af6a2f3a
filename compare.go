package xray

import "fmt"

// DiffStyle selects how differing pixels are drawn in the diff image.
// Matching pixels are always fully transparent.
type DiffStyle int

const (
	// DiffMarker paints every differing pixel opaque magenta.
	DiffMarker DiffStyle = iota
	// DiffActual copies the actual pixel into the diff, showing only what the
	// capture added or changed.
	DiffActual
)

var (
	// MarkerColor is the RGBA value used for differing pixels in DiffMarker.
	MarkerColor = [4]byte{255, 0, 255, 255}
	// NeutralColor is the RGBA value used for matching pixels.
	NeutralColor = [4]byte{0, 0, 0, 0}
)

func (s DiffStyle) String() string {
	switch s {
	case DiffMarker:
		return "marker"
	case DiffActual:
		return "actual"
	default:
		return fmt.Sprintf("DiffStyle(%d)", int(s))
	}
}

// ParseDiffStyle maps "marker" or "actual" to a DiffStyle.
func ParseDiffStyle(s string) (DiffStyle, error) {
	switch s {
	case "marker", "":
		return DiffMarker, nil
	case "actual":
		return DiffActual, nil
	default:
		return 0, fmt.Errorf("unknown diff style %q", s)
	}
}

// DiffResult is the outcome of one comparison.
type DiffResult struct {
	Matches         bool
	DifferingPixels int
	Diff            PixelBuffer
}

type compareOptions struct {
	tolerance uint8
	style     DiffStyle
}

// CompareOption customises Compare.
type CompareOption func(*compareOptions)

// WithTolerance sets the largest per-channel absolute difference that still
// counts as equal. Zero, the default, requires an exact match.
func WithTolerance(t uint8) CompareOption {
	return func(o *compareOptions) { o.tolerance = t }
}

// WithDiffStyle selects how differing pixels are rendered.
func WithDiffStyle(s DiffStyle) CompareOption {
	return func(o *compareOptions) { o.style = s }
}

// Compare checks actual against reference pixel by pixel. A pixel differs
// when any channel's absolute difference exceeds the tolerance. The buffers
// must have identical dimensions, otherwise a *DimensionMismatchError is
// returned.
//
// Compare is a pure function of its inputs; neither buffer is modified.
func Compare(reference, actual PixelBuffer, opts ...CompareOption) (DiffResult, error) {
	var o compareOptions
	for _, opt := range opts {
		opt(&o)
	}

	if reference.Size() != actual.Size() {
		return DiffResult{}, &DimensionMismatchError{Expected: reference.Size(), Got: actual.Size()}
	}
	if err := reference.Validate(); err != nil {
		return DiffResult{}, fmt.Errorf("reference: %w", err)
	}
	if err := actual.Validate(); err != nil {
		return DiffResult{}, fmt.Errorf("actual: %w", err)
	}

	diff := NewBlankBuffer(actual.Width, actual.Height)
	differing := 0

	for i := 0; i < len(actual.Pix); i += 4 {
		if !pixelDiffers(reference.Pix[i:i+4], actual.Pix[i:i+4], o.tolerance) {
			continue
		}
		differing++

		switch o.style {
		case DiffActual:
			copy(diff.Pix[i:i+4], actual.Pix[i:i+4])
		default:
			copy(diff.Pix[i:i+4], MarkerColor[:])
		}
	}

	return DiffResult{
		Matches:         differing == 0,
		DifferingPixels: differing,
		Diff:            diff,
	}, nil
}

func pixelDiffers(a, b []byte, tolerance uint8) bool {
	for c := 0; c < 4; c++ {
		if absDiff(a[c], b[c]) > tolerance {
			return true
		}
	}
	return false
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
