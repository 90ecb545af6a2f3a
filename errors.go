package xray

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrDimensionMismatch is returned when the capture and the reference
	// differ in size. No diff can be rendered in that case.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrMissingBaseline is returned by Store.LoadReference when no reference
	// image exists. The Tester turns it into a NoBaseline verdict.
	ErrMissingBaseline = errors.New("missing baseline")

	// ErrCorruptBaseline means the reference file exists but cannot be decoded
	// or has zero dimensions.
	ErrCorruptBaseline = errors.New("corrupt baseline")

	// ErrArtifactWriteFailed marks a failure to persist actual, diff or
	// expected images. It never overrides a verdict.
	ErrArtifactWriteFailed = errors.New("artifact write failed")

	ErrInvalidTestCaseID = errors.New("invalid test case id")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCorruptData       = errors.New("corrupt image data")
	ErrCapture           = errors.New("capture failed")
)

// DimensionMismatchError carries the sizes of both buffers.
type DimensionMismatchError struct {
	Expected image.Point
	Got      image.Point
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %dx%d, got %dx%d",
		ErrDimensionMismatch.Error(), e.Expected.X, e.Expected.Y, e.Got.X, e.Got.Y)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// ArtifactError wraps a store failure with the operation, test case and path
// involved.
type ArtifactError struct {
	Kind error
	Op   string
	ID   TestCaseID
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s %s", e.Kind.Error(), e.Op, e.ID)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *ArtifactError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func writeFailed(op string, id TestCaseID, path string, err error) error {
	return &ArtifactError{Kind: ErrArtifactWriteFailed, Op: op, ID: id, Path: path, Err: err}
}

var (
	// ErrMismatch is reported by Verdict.Err for a Mismatched verdict.
	ErrMismatch = errors.New("screenshot mismatch")
	// ErrNoBaseline is reported by Verdict.Err for a NoBaseline verdict.
	ErrNoBaseline = errors.New("no reference screenshot")
)
