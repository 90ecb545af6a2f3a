package xray

import (
	"fmt"
	"path"
	"strings"
)

// TestCaseID names a screenshot test. Slashes group tests into directories,
// e.g. "basic_rendering/initial_map".
type TestCaseID string

// Validate checks that the id is a safe relative path fragment: non-empty,
// slash separated, without empty, "." or ".." segments.
func (id TestCaseID) Validate() error {
	s := string(id)
	switch {
	case strings.TrimSpace(s) == "":
		return fmt.Errorf("%w: empty", ErrInvalidTestCaseID)
	case strings.ContainsAny(s, "\\\x00"):
		return fmt.Errorf("%w: %q contains a backslash or NUL", ErrInvalidTestCaseID, s)
	case path.IsAbs(s) || (len(s) > 1 && s[1] == ':'):
		return fmt.Errorf("%w: %q is absolute", ErrInvalidTestCaseID, s)
	}

	for _, seg := range strings.Split(s, "/") {
		switch seg {
		case "":
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidTestCaseID, s)
		case ".", "..":
			return fmt.Errorf("%w: %q has a %q segment", ErrInvalidTestCaseID, s, seg)
		}
	}
	return nil
}

func (id TestCaseID) String() string { return string(id) }
