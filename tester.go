package xray

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
)

// Outcome classifies a completed screenshot test.
type Outcome int

const (
	Matched Outcome = iota + 1
	Mismatched
	NoBaseline
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	case NoBaseline:
		return "no baseline"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Verdict is the result of one Tester.Run call.
type Verdict struct {
	ID      TestCaseID
	Outcome Outcome
	// Diff is set whenever a comparison ran, i.e. for Matched and Mismatched.
	Diff *DiffResult
	// ArtifactErr collects artifact write failures. It is reported next to
	// the outcome and never changes it.
	ArtifactErr error
}

// Passed reports whether the capture matched its reference.
func (v Verdict) Passed() bool { return v.Outcome == Matched }

// Err converts the verdict into the error a test should fail with, or nil
// for a match. NoBaseline is a failure so that CI never passes silently on
// a missing reference.
func (v Verdict) Err() error {
	switch v.Outcome {
	case Matched:
		return nil
	case Mismatched:
		n := 0
		if v.Diff != nil {
			n = v.Diff.DifferingPixels
		}
		return fmt.Errorf("%w: %s: %d pixels differ", ErrMismatch, v.ID, n)
	case NoBaseline:
		return fmt.Errorf("%w: %s", ErrNoBaseline, v.ID)
	default:
		return fmt.Errorf("%s: incomplete verdict", v.ID)
	}
}

// Tester runs screenshot tests against a Store. A Tester holds no state
// between runs and may be shared, provided captures themselves are
// serialised by the caller.
type Tester struct {
	cfg    Config
	store  Store
	logger *slog.Logger
}

// TesterOption customises NewTester.
type TesterOption func(*Tester)

// WithStore replaces the filesystem store derived from Config.
func WithStore(s Store) TesterOption {
	return func(t *Tester) { t.store = s }
}

// WithLogger sets a logger for this tester instead of the package logger.
func WithLogger(l *slog.Logger) TesterOption {
	return func(t *Tester) { t.logger = l }
}

// NewTester builds a Tester. Without WithStore it uses an FSStore rooted at
// cfg.ReferencesDir and cfg.OutputDir.
func NewTester(cfg Config, opts ...TesterOption) (*Tester, error) {
	t := &Tester{cfg: cfg}
	for _, opt := range opts {
		opt(t)
	}

	if t.store == nil {
		s, err := NewFSStore(cfg.ReferencesDir, cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("new tester: %w", err)
		}
		t.store = s
	}
	return t, nil
}

// Config returns the tester's configuration.
func (t *Tester) Config() Config { return t.cfg }

// Store returns the store artifacts are read from and written to.
func (t *Tester) Store() Store { return t.store }

func (t *Tester) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return Logger()
}

// Run compares actual with the reference stored for id and writes the
// review artifacts. opts override the configured tolerance and diff style
// for this call only.
//
// The returned error is reserved for conditions that make a verdict
// impossible: an invalid id or buffer, a reference of a different size
// (ErrDimensionMismatch), an unreadable reference (ErrCorruptBaseline) or a
// failing store probe. Artifact write failures go to Verdict.ArtifactErr,
// or are joined into the returned error when no verdict was reached.
func (t *Tester) Run(id TestCaseID, actual PixelBuffer, opts ...CompareOption) (Verdict, error) {
	if err := id.Validate(); err != nil {
		return Verdict{}, err
	}
	if err := actual.Validate(); err != nil {
		return Verdict{}, fmt.Errorf("%s: actual: %w", id, err)
	}

	log := t.log().With("id", string(id))

	exists, err := t.store.ReferenceExists(id)
	if err != nil {
		return Verdict{}, err
	}
	if !exists {
		return t.noBaseline(log, id, actual), nil
	}

	reference, err := t.store.LoadReference(id)
	if err != nil {
		if errors.Is(err, ErrMissingBaseline) {
			// Removed between the probe and the load.
			return t.noBaseline(log, id, actual), nil
		}
		log.Error("xray: reference unreadable", "err", err)
		return Verdict{}, err
	}

	all := append([]CompareOption{WithTolerance(t.cfg.Tolerance), WithDiffStyle(t.cfg.DiffStyle)}, opts...)
	result, err := Compare(reference, actual, all...)
	if err != nil {
		werr := t.store.SaveActual(id, actual)
		if werr != nil {
			log.Warn("xray: artifact write failed", "err", werr)
		}
		log.Error("xray: comparison aborted", "err", err)
		return Verdict{}, fmt.Errorf("%s: %w", id, errors.Join(err, werr))
	}

	v := Verdict{ID: id, Outcome: Matched, Diff: &result}
	if !result.Matches {
		v.Outcome = Mismatched
	}

	var werrs []error
	if v.Outcome == Mismatched || !t.cfg.SkipArtifactsOnMatch {
		werrs = append(werrs, t.store.SaveActual(id, actual), t.store.SaveDiff(id, result.Diff))
	}
	if v.Outcome == Mismatched && t.cfg.WriteExpected {
		werrs = append(werrs, t.store.SaveExpected(id, reference))
	}
	v.ArtifactErr = errors.Join(werrs...)

	if v.ArtifactErr != nil {
		log.Warn("xray: artifact write failed", "err", v.ArtifactErr)
	}
	log.Info("xray: screenshot compared", "outcome", v.Outcome.String(), "differing_pixels", result.DifferingPixels)
	return v, nil
}

func (t *Tester) noBaseline(log *slog.Logger, id TestCaseID, actual PixelBuffer) Verdict {
	v := Verdict{ID: id, Outcome: NoBaseline}
	if err := t.store.SaveNewReferenceCandidate(id, actual); err != nil {
		log.Warn("xray: artifact write failed", "err", err)
		v.ArtifactErr = err
	}
	log.Info("xray: no reference screenshot", "outcome", v.Outcome.String())
	return v
}

// RunCapture captures rect through c and runs the test on the result.
func (t *Tester) RunCapture(id TestCaseID, c Capturer, rect image.Rectangle, opts ...CompareOption) (Verdict, error) {
	if err := id.Validate(); err != nil {
		return Verdict{}, err
	}
	actual, err := c.Capture(rect)
	if err != nil {
		if !errors.Is(err, ErrCapture) {
			err = fmt.Errorf("%w: %w", ErrCapture, err)
		}
		return Verdict{}, fmt.Errorf("%s: %w", id, err)
	}
	return t.Run(id, actual, opts...)
}

var defaultTester struct {
	once sync.Once
	t    *Tester
	err  error
}

func getDefaultTester() (*Tester, error) {
	defaultTester.once.Do(func() {
		cfg, err := ConfigFromEnv("XRAY", DefaultConfig())
		if err != nil {
			defaultTester.err = err
			return
		}
		defaultTester.t, defaultTester.err = NewTester(cfg)
	})
	return defaultTester.t, defaultTester.err
}

// RunScreenshotTest runs a test with the default configuration: references/
// and test_output/ in the working directory, overridable through
// XRAY_REFERENCES_DIR, XRAY_OUTPUT_DIR and XRAY_DIFF_STYLE. tolerance
// applies to this call only.
func RunScreenshotTest(id TestCaseID, actual PixelBuffer, tolerance uint8) (Verdict, error) {
	t, err := getDefaultTester()
	if err != nil {
		return Verdict{}, err
	}
	return t.Run(id, actual, WithTolerance(tolerance))
}
