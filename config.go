package xray

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultReferencesDir = "references"
	DefaultOutputDir     = "test_output"
)

// Config holds everything a Tester needs. It is passed in explicitly so
// tests can run in isolation against their own directories.
type Config struct {
	// ReferencesDir holds the human-approved baselines, <id>.png.
	ReferencesDir string
	// OutputDir receives <id>/actual.png, diff.png and expected.png.
	OutputDir string
	// Tolerance is the largest per-channel difference still considered equal.
	Tolerance uint8
	// DiffStyle selects how differing pixels are drawn.
	DiffStyle DiffStyle
	// SkipArtifactsOnMatch suppresses actual.png and diff.png when the
	// capture matches. By default they are written on every comparison.
	SkipArtifactsOnMatch bool
	// WriteExpected copies the reference to expected.png on a mismatch.
	WriteExpected bool
}

// DefaultConfig returns the layout used by the package-level helpers:
// references/ and test_output/ relative to the working directory, exact
// comparison, artifacts always written.
func DefaultConfig() Config {
	return Config{
		ReferencesDir: DefaultReferencesDir,
		OutputDir:     DefaultOutputDir,
	}
}

// Validate checks that both roots are set.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ReferencesDir) == "" {
		return errors.New("references dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output dir is required")
	}
	return nil
}

// ConfigFromEnv overlays <prefix>_REFERENCES_DIR, <prefix>_OUTPUT_DIR,
// <prefix>_TOLERANCE and <prefix>_DIFF_STYLE onto base. Unset variables
// leave base untouched.
func ConfigFromEnv(prefix string, base Config) (Config, error) {
	cfg := base
	if v, ok := os.LookupEnv(prefix + "_REFERENCES_DIR"); ok {
		cfg.ReferencesDir = v
	}
	if v, ok := os.LookupEnv(prefix + "_OUTPUT_DIR"); ok {
		cfg.OutputDir = v
	}
	if v, ok := os.LookupEnv(prefix + "_TOLERANCE"); ok {
		t, err := strconv.ParseUint(strings.TrimSpace(v), 10, 8)
		if err != nil {
			return Config{}, fmt.Errorf("%s_TOLERANCE: %w", prefix, err)
		}
		cfg.Tolerance = uint8(t)
	}
	if v, ok := os.LookupEnv(prefix + "_DIFF_STYLE"); ok {
		s, err := ParseDiffStyle(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s_DIFF_STYLE: %w", prefix, err)
		}
		cfg.DiffStyle = s
	}
	return cfg, nil
}
