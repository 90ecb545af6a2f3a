package xray

import "sync"

// MemStore is an in-memory Store. Saved buffers are cloned on the way in and
// out, so callers cannot alias stored pixels. The zero value is ready to use.
type MemStore struct {
	mu         sync.Mutex
	references map[TestCaseID]PixelBuffer
	artifacts  map[TestCaseID]map[string]PixelBuffer
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		references: make(map[TestCaseID]PixelBuffer),
		artifacts:  make(map[TestCaseID]map[string]PixelBuffer),
	}
}

// PutReference installs a baseline for id.
func (s *MemStore) PutReference(id TestCaseID, buf PixelBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.references == nil {
		s.references = make(map[TestCaseID]PixelBuffer)
	}
	s.references[id] = buf.Clone()
}

// Artifact returns a stored artifact by file name ("actual.png", "diff.png"
// or "expected.png").
func (s *MemStore) Artifact(id TestCaseID, name string) (PixelBuffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.artifacts[id][name]
	if !ok {
		return PixelBuffer{}, false
	}
	return buf.Clone(), true
}

// ReferenceExists reports whether PutReference was called for id.
func (s *MemStore) ReferenceExists(id TestCaseID) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.references[id]
	return ok, nil
}

// LoadReference returns a copy of the stored reference.
func (s *MemStore) LoadReference(id TestCaseID) (PixelBuffer, error) {
	if err := id.Validate(); err != nil {
		return PixelBuffer{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.references[id]
	if !ok {
		return PixelBuffer{}, &ArtifactError{Kind: ErrMissingBaseline, Op: "load reference", ID: id}
	}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, &ArtifactError{Kind: ErrCorruptBaseline, Op: "load reference", ID: id, Err: err}
	}
	return buf.Clone(), nil
}

// SaveActual stores buf as actual.png.
func (s *MemStore) SaveActual(id TestCaseID, buf PixelBuffer) error {
	return s.put("save actual", id, actualFile, buf)
}

// SaveDiff stores buf as diff.png.
func (s *MemStore) SaveDiff(id TestCaseID, buf PixelBuffer) error {
	return s.put("save diff", id, diffFile, buf)
}

// SaveExpected stores buf as expected.png.
func (s *MemStore) SaveExpected(id TestCaseID, buf PixelBuffer) error {
	return s.put("save expected", id, expectedFile, buf)
}

// SaveNewReferenceCandidate stores buf as actual.png, leaving references alone.
func (s *MemStore) SaveNewReferenceCandidate(id TestCaseID, buf PixelBuffer) error {
	return s.put("save reference candidate", id, actualFile, buf)
}

func (s *MemStore) put(op string, id TestCaseID, name string, buf PixelBuffer) error {
	if err := id.Validate(); err != nil {
		return writeFailed(op, id, name, err)
	}
	if err := buf.Validate(); err != nil {
		return writeFailed(op, id, name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts == nil {
		s.artifacts = make(map[TestCaseID]map[string]PixelBuffer)
	}
	if s.artifacts[id] == nil {
		s.artifacts[id] = make(map[string]PixelBuffer)
	}
	s.artifacts[id][name] = buf.Clone()
	return nil
}
