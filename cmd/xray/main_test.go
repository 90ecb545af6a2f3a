package main

import (
	"os"
	"path/filepath"
	"testing"
)

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read %s: %v", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", dst, err)
	}
}

func TestSquareWorkflow(t *testing.T) {
	root := t.TempDir()
	refs := filepath.Join(root, "references")
	out := filepath.Join(root, "test_output")
	base := []string{"--id", "square/initial", "--references", refs, "--output", out, "--log-level", "error"}

	if code := runSquare(base); code != exitFail {
		t.Fatalf("first run exit = %d, want %d (no baseline)", code, exitFail)
	}
	actual := filepath.Join(out, "square", "initial", "actual.png")
	if _, err := os.Stat(actual); err != nil {
		t.Fatalf("expected candidate at %s: %v", actual, err)
	}

	copyFile(t, actual, filepath.Join(refs, "square", "initial.png"))

	if code := runSquare(base); code != exitPass {
		t.Fatalf("accepted run exit = %d, want %d", code, exitPass)
	}
	if code := runSquare(append(base, "--angle", "45")); code != exitFail {
		t.Fatalf("rotated run exit = %d, want %d", code, exitFail)
	}
	if _, err := os.Stat(filepath.Join(out, "square", "initial", "diff.png")); err != nil {
		t.Fatalf("expected diff.png: %v", err)
	}

	// The stored actual compares against itself through the compare command.
	if code := runCompare(append(base, "--in", filepath.Join(refs, "square", "initial.png"))); code != exitPass {
		t.Fatalf("compare exit = %d, want %d", code, exitPass)
	}
}

func TestCommandErrors(t *testing.T) {
	cases := []struct {
		name string
		run  func([]string) int
		args []string
	}{
		{"compare without id", runCompare, []string{"--in", "x.png"}},
		{"compare without input", runCompare, []string{"--id", "x"}},
		{"compare missing file", runCompare, []string{"--id", "x", "--in", filepath.Join(t.TempDir(), "missing.png")}},
		{"square too small", runSquare, []string{"--id", "x", "--size", "10"}},
		{"bad diff style", runSquare, []string{"--id", "x", "--diff-style", "glow"}},
		{"bad log level", runSquare, []string{"--id", "x", "--log-level", "loud"}},
		{"unknown flag", runSquare, []string{"--nope"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code := tc.run(tc.args); code != exitError {
				t.Fatalf("exit = %d, want %d", code, exitError)
			}
		})
	}
}

func TestHelpExitsCleanly(t *testing.T) {
	for name, run := range map[string]func([]string) int{"compare": runCompare, "square": runSquare} {
		for _, arg := range []string{"--help", "-h"} {
			if code := run([]string{arg}); code != exitPass {
				t.Errorf("%s %s exit = %d, want %d", name, arg, code, exitPass)
			}
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "WARN", "error"} {
		if _, err := parseLevel(s); err != nil {
			t.Errorf("parseLevel(%q): %v", s, err)
		}
	}
}
