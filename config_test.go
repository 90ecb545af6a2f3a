package xray

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ReferencesDir != "references" || cfg.OutputDir != "test_output" {
		t.Fatalf("unexpected roots: %+v", cfg)
	}
	if cfg.Tolerance != 0 {
		t.Fatalf("default tolerance = %d, want exact match", cfg.Tolerance)
	}
	if cfg.SkipArtifactsOnMatch {
		t.Fatalf("artifacts should be written on match by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("XRAYTEST_REFERENCES_DIR", "golden")
	t.Setenv("XRAYTEST_OUTPUT_DIR", "out")
	t.Setenv("XRAYTEST_TOLERANCE", " 3 ")
	t.Setenv("XRAYTEST_DIFF_STYLE", "actual")

	cfg, err := ConfigFromEnv("XRAYTEST", DefaultConfig())
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.ReferencesDir != "golden" || cfg.OutputDir != "out" || cfg.Tolerance != 3 || cfg.DiffStyle != DiffActual {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.SkipArtifactsOnMatch {
		t.Fatalf("unset fields should keep base values")
	}
}

func TestConfigFromEnvInvalid(t *testing.T) {
	cases := map[string]string{
		"XRAYBAD_TOLERANCE":  "256",
		"XRAYBAD_DIFF_STYLE": "glow",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := ConfigFromEnv("XRAYBAD", DefaultConfig()); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
