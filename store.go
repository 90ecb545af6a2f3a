package xray

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	actualFile   = "actual.png"
	diffFile     = "diff.png"
	expectedFile = "expected.png"
)

// Store loads reference images and persists the artifacts of a run.
// FSStore is the filesystem implementation; callers may provide their own,
// for example to keep references in a remote bucket.
type Store interface {
	// ReferenceExists reports whether a baseline is stored for id.
	ReferenceExists(id TestCaseID) (bool, error)
	// LoadReference fails with ErrMissingBaseline or ErrCorruptBaseline.
	LoadReference(id TestCaseID) (PixelBuffer, error)
	SaveActual(id TestCaseID, buf PixelBuffer) error
	SaveDiff(id TestCaseID, buf PixelBuffer) error
	SaveExpected(id TestCaseID, buf PixelBuffer) error
	// SaveNewReferenceCandidate stores a first-run capture for review. It
	// must never write to the reference location.
	SaveNewReferenceCandidate(id TestCaseID, buf PixelBuffer) error
}

// FSStore keeps references under <ReferencesDir>/<id>.png and artifacts
// under <OutputDir>/<id>/. All images are PNG.
type FSStore struct {
	referencesDir string
	outputDir     string
}

var _ Store = (*FSStore)(nil)

// NewFSStore returns a store rooted at the given directories. Neither needs
// to exist yet.
func NewFSStore(referencesDir, outputDir string) (*FSStore, error) {
	cfg := Config{ReferencesDir: referencesDir, OutputDir: outputDir}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FSStore{referencesDir: referencesDir, outputDir: outputDir}, nil
}

// ReferencePath returns <ReferencesDir>/<id>.png.
func (s *FSStore) ReferencePath(id TestCaseID) string {
	return filepath.Join(s.referencesDir, filepath.FromSlash(string(id))+".png")
}

// OutputDir returns <OutputDir>/<id>.
func (s *FSStore) OutputDir(id TestCaseID) string {
	return filepath.Join(s.outputDir, filepath.FromSlash(string(id)))
}

// ActualPath returns <OutputDir>/<id>/actual.png.
func (s *FSStore) ActualPath(id TestCaseID) string {
	return filepath.Join(s.OutputDir(id), actualFile)
}

// DiffPath returns <OutputDir>/<id>/diff.png.
func (s *FSStore) DiffPath(id TestCaseID) string {
	return filepath.Join(s.OutputDir(id), diffFile)
}

// ExpectedPath returns <OutputDir>/<id>/expected.png.
func (s *FSStore) ExpectedPath(id TestCaseID) string {
	return filepath.Join(s.OutputDir(id), expectedFile)
}

// ReferenceExists reports whether a regular file sits at ReferencePath(id).
func (s *FSStore) ReferenceExists(id TestCaseID) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	info, err := os.Stat(s.ReferencePath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat reference %s: %w", id, err)
	}
	return info.Mode().IsRegular(), nil
}

// LoadReference decodes the reference image. A missing file yields
// ErrMissingBaseline; an unreadable or undecodable one ErrCorruptBaseline.
func (s *FSStore) LoadReference(id TestCaseID) (PixelBuffer, error) {
	if err := id.Validate(); err != nil {
		return PixelBuffer{}, err
	}

	path := s.ReferencePath(id)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PixelBuffer{}, &ArtifactError{Kind: ErrMissingBaseline, Op: "load reference", ID: id, Path: path}
		}
		return PixelBuffer{}, &ArtifactError{Kind: ErrCorruptBaseline, Op: "load reference", ID: id, Path: path, Err: err}
	}
	defer f.Close()

	buf, err := DecodeBuffer(bufio.NewReader(f))
	if err != nil {
		return PixelBuffer{}, &ArtifactError{Kind: ErrCorruptBaseline, Op: "load reference", ID: id, Path: path, Err: err}
	}
	return buf, nil
}

// SaveActual writes buf to actual.png, replacing any earlier run.
func (s *FSStore) SaveActual(id TestCaseID, buf PixelBuffer) error {
	return s.write("save actual", id, s.ActualPath(id), buf)
}

// SaveDiff writes buf to diff.png, replacing any earlier run.
func (s *FSStore) SaveDiff(id TestCaseID, buf PixelBuffer) error {
	return s.write("save diff", id, s.DiffPath(id), buf)
}

// SaveExpected writes a copy of the reference to expected.png.
func (s *FSStore) SaveExpected(id TestCaseID, buf PixelBuffer) error {
	return s.write("save expected", id, s.ExpectedPath(id), buf)
}

// SaveNewReferenceCandidate writes the capture to actual.png. Copying it to
// the reference location is left to whoever reviews it.
func (s *FSStore) SaveNewReferenceCandidate(id TestCaseID, buf PixelBuffer) error {
	return s.write("save reference candidate", id, s.ActualPath(id), buf)
}

// write encodes buf into a temp file next to path and renames it into place,
// so a reader never observes a half-written PNG.
func (s *FSStore) write(op string, id TestCaseID, path string, buf PixelBuffer) error {
	if err := id.Validate(); err != nil {
		return writeFailed(op, id, path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return writeFailed(op, id, path, err)
	}

	tmp, err := os.CreateTemp(dir, ".xray-*.png")
	if err != nil {
		return writeFailed(op, id, path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	w := bufio.NewWriter(tmp)
	if err := EncodeBuffer(w, buf); err != nil {
		_ = tmp.Close()
		cleanup()
		return writeFailed(op, id, path, err)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		cleanup()
		return writeFailed(op, id, path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return writeFailed(op, id, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return writeFailed(op, id, path, err)
	}

	Logger().Debug("xray: wrote artifact", "op", op, "id", string(id), "path", path)
	return nil
}
