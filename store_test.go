package xray

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFSStore(t *testing.T) (*FSStore, string) {
	t.Helper()
	root := t.TempDir()
	s, err := NewFSStore(filepath.Join(root, "references"), filepath.Join(root, "test_output"))
	require.NoError(t, err)
	return s, root
}

func writeReference(t *testing.T, s *FSStore, id TestCaseID, buf PixelBuffer) {
	t.Helper()
	path := s.ReferencePath(id)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, EncodeBuffer(f, buf))
}

func TestFSStorePaths(t *testing.T) {
	s, err := NewFSStore("refs", "out")
	require.NoError(t, err)

	id := TestCaseID("basic_rendering/initial_map")
	assert.Equal(t, filepath.Join("refs", "basic_rendering", "initial_map.png"), s.ReferencePath(id))
	assert.Equal(t, filepath.Join("out", "basic_rendering", "initial_map", "actual.png"), s.ActualPath(id))
	assert.Equal(t, filepath.Join("out", "basic_rendering", "initial_map", "diff.png"), s.DiffPath(id))
	assert.Equal(t, filepath.Join("out", "basic_rendering", "initial_map", "expected.png"), s.ExpectedPath(id))
}

func TestNewFSStoreRequiresDirs(t *testing.T) {
	_, err := NewFSStore("", "out")
	assert.Error(t, err)
	_, err = NewFSStore("refs", " ")
	assert.Error(t, err)
}

func TestFSStoreReferenceExists(t *testing.T) {
	s, _ := newTestFSStore(t)

	ok, err := s.ReferenceExists("foo")
	require.NoError(t, err)
	assert.False(t, ok)

	writeReference(t, s, "foo", solidBuffer(2, 2, black))
	ok, err = s.ReferenceExists("foo")
	require.NoError(t, err)
	assert.True(t, ok)

	// A directory at the reference path is not a reference.
	require.NoError(t, os.MkdirAll(s.ReferencePath("dir"), 0o755))
	ok, err = s.ReferenceExists("dir")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.ReferenceExists("../escape")
	assert.ErrorIs(t, err, ErrInvalidTestCaseID)
}

func TestFSStoreLoadReference(t *testing.T) {
	s, _ := newTestFSStore(t)
	want := withPixel(solidBuffer(3, 2, black), 2, 1, white)
	writeReference(t, s, "nested/case", want)

	got, err := s.LoadReference("nested/case")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFSStoreLoadReferenceMissing(t *testing.T) {
	s, _ := newTestFSStore(t)

	_, err := s.LoadReference("absent")
	require.ErrorIs(t, err, ErrMissingBaseline)

	var ae *ArtifactError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, s.ReferencePath("absent"), ae.Path)
}

func TestFSStoreLoadReferenceCorrupt(t *testing.T) {
	s, _ := newTestFSStore(t)
	path := s.ReferencePath("broken")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\ngarbage"), 0o644))

	_, err := s.LoadReference("broken")
	assert.ErrorIs(t, err, ErrCorruptBaseline)
	assert.ErrorIs(t, err, ErrCorruptData)
	assert.NotErrorIs(t, err, ErrMissingBaseline)
}

func TestFSStoreSaveOverwrites(t *testing.T) {
	s, _ := newTestFSStore(t)
	id := TestCaseID("group/case")

	require.NoError(t, s.SaveActual(id, solidBuffer(2, 2, black)))
	require.NoError(t, s.SaveActual(id, solidBuffer(2, 2, white)))
	require.NoError(t, s.SaveDiff(id, solidBuffer(2, 2, MarkerColor)))
	require.NoError(t, s.SaveExpected(id, solidBuffer(2, 2, black)))

	actual := readPNG(t, s.ActualPath(id))
	assert.Equal(t, solidBuffer(2, 2, white), actual)
	assert.Equal(t, solidBuffer(2, 2, MarkerColor), readPNG(t, s.DiffPath(id)))
	assert.Equal(t, solidBuffer(2, 2, black), readPNG(t, s.ExpectedPath(id)))

	entries, err := os.ReadDir(s.OutputDir(id))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"actual.png", "diff.png", "expected.png"}, names, "temp files left behind")
}

func TestFSStoreNewReferenceCandidateNeverTouchesReferences(t *testing.T) {
	s, root := newTestFSStore(t)
	id := TestCaseID("foo")

	require.NoError(t, s.SaveNewReferenceCandidate(id, solidBuffer(2, 2, white)))

	assert.FileExists(t, s.ActualPath(id))
	assert.NoFileExists(t, s.ReferencePath(id))
	assert.NoDirExists(t, filepath.Join(root, "references"))
}

func TestFSStoreWriteFailure(t *testing.T) {
	s, _ := newTestFSStore(t)
	id := TestCaseID("blocked")

	// A regular file where the output directory should be.
	require.NoError(t, os.MkdirAll(filepath.Dir(s.OutputDir(id)), 0o755))
	require.NoError(t, os.WriteFile(s.OutputDir(id), []byte("x"), 0o644))

	err := s.SaveActual(id, solidBuffer(1, 1, black))
	require.ErrorIs(t, err, ErrArtifactWriteFailed)

	err = s.SaveDiff(id, PixelBuffer{Width: 1, Height: 1})
	require.ErrorIs(t, err, ErrArtifactWriteFailed)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	id := TestCaseID("mem/case")

	ok, err := s.ReferenceExists(id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.LoadReference(id)
	assert.ErrorIs(t, err, ErrMissingBaseline)

	ref := solidBuffer(2, 2, black)
	s.PutReference(id, ref)
	ref.Pix[0] = 99 // stored copy is independent

	got, err := s.LoadReference(id)
	require.NoError(t, err)
	assert.Equal(t, solidBuffer(2, 2, black), got)

	s.PutReference("mem/bad", PixelBuffer{Width: 2, Height: 2})
	_, err = s.LoadReference("mem/bad")
	assert.ErrorIs(t, err, ErrCorruptBaseline)

	require.NoError(t, s.SaveNewReferenceCandidate(id, solidBuffer(2, 2, white)))
	actual, ok := s.Artifact(id, "actual.png")
	require.True(t, ok)
	assert.Equal(t, solidBuffer(2, 2, white), actual)

	err = s.SaveDiff(id, PixelBuffer{})
	assert.ErrorIs(t, err, ErrArtifactWriteFailed)
}

func TestMemStoreZeroValue(t *testing.T) {
	var s MemStore
	id := TestCaseID("zero/value")

	require.NoError(t, s.SaveActual(id, solidBuffer(1, 1, white)))
	_, ok := s.Artifact(id, "actual.png")
	assert.True(t, ok)

	s.PutReference(id, solidBuffer(1, 1, black))
	got, err := s.LoadReference(id)
	require.NoError(t, err)
	assert.Equal(t, solidBuffer(1, 1, black), got)
}

func readPNG(t *testing.T, path string) PixelBuffer {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	buf, err := DecodeBuffer(f)
	require.NoError(t, err)
	return buf
}
