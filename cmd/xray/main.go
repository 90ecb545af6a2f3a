package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	xray "github.com/gcslaoli/xray-go"
)

// go run ./cmd/xray compare --id basic/initial_map --in frame.png
// go run ./cmd/xray compare --id basic/initial_map --inbase64 "data:image/png;base64,..."
// go run ./cmd/xray square --id initial_render --size 200
// go run ./cmd/xray square --id update_correct --angle 90 --tolerance 2

const (
	exitPass  = 0
	exitFail  = 1
	exitError = 2
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: xray <command> [flags]

commands:
  compare   compare an image file against references/<id>.png
  square    render the spinning-square scene and compare it

run "xray <command> --help" for flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitError)
	}

	var code int
	switch os.Args[1] {
	case "compare":
		code = runCompare(os.Args[2:])
	case "square":
		code = runSquare(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		code = exitError
	}
	os.Exit(code)
}

// commonFlags are shared by every command that runs a screenshot test.
type commonFlags struct {
	id            string
	referencesDir string
	outputDir     string
	tolerance     uint8
	diffStyle     string
	expected      bool
	skipOnMatch     bool
	logLevel      string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.id, "id", "", "test case id, e.g. basic_rendering/initial_map (required)")
	fs.StringVar(&c.referencesDir, "references", xray.DefaultReferencesDir, "directory holding <id>.png references")
	fs.StringVar(&c.outputDir, "output", xray.DefaultOutputDir, "directory receiving <id>/actual.png and diff.png")
	fs.Uint8VarP(&c.tolerance, "tolerance", "t", 0, "largest per-channel difference still considered equal")
	fs.StringVar(&c.diffStyle, "diff-style", "marker", "diff rendering: marker or actual")
	fs.BoolVar(&c.expected, "expected", false, "also write expected.png on mismatch")
	fs.BoolVar(&c.skipOnMatch, "skip-artifacts-on-match", false, "do not write actual.png/diff.png when the images match")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

func (c *commonFlags) tester() (*xray.Tester, error) {
	if c.id == "" {
		return nil, fmt.Errorf("--id is required")
	}

	level, err := parseLevel(c.logLevel)
	if err != nil {
		return nil, err
	}
	xray.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	style, err := xray.ParseDiffStyle(c.diffStyle)
	if err != nil {
		return nil, err
	}

	cfg := xray.DefaultConfig()
	cfg.ReferencesDir = c.referencesDir
	cfg.OutputDir = c.outputDir
	cfg.Tolerance = c.tolerance
	cfg.DiffStyle = style
	cfg.WriteExpected = c.expected
	cfg.SkipArtifactsOnMatch = c.skipOnMatch

	return xray.NewTester(cfg)
}

// parseExit maps a flag parse failure to an exit code; --help is not an error.
func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitPass
	}
	return exitError
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func runCompare(args []string) int {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	input := fs.String("in", "", "path to the captured image (png/bmp/tiff/webp/jpg)")
	inputBase64 := fs.String("inbase64", "", "base64 captured image (optionally a data URL)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}

	if *input == "" && *inputBase64 == "" {
		fmt.Fprintln(os.Stderr, "one of --in or --inbase64 is required")
		fs.Usage()
		return exitError
	}

	tester, err := common.tester()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}

	var actual xray.PixelBuffer
	if *inputBase64 != "" {
		actual, err = xray.DecodeBase64Buffer(*inputBase64)
	} else {
		actual, err = readBuffer(*input)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode input: %v\n", err)
		return exitError
	}

	return report(tester, xray.TestCaseID(common.id), actual)
}

func runSquare(args []string) int {
	fs := flag.NewFlagSet("square", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	size := fs.Int("size", 200, "window size in pixels")
	angle := fs.Float64("angle", 0, "square rotation in degrees")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}

	tester, err := common.tester()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}

	scene, err := newSquareScene(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}
	defer scene.Close()

	if err := scene.Render(*angle); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		return exitError
	}

	actual, err := scene.Capture(image.Rectangle{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "capture: %v\n", err)
		return exitError
	}

	return report(tester, xray.TestCaseID(common.id), actual)
}

func readBuffer(path string) (xray.PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return xray.PixelBuffer{}, err
	}
	defer f.Close()
	return xray.DecodeBuffer(f)
}

func report(tester *xray.Tester, id xray.TestCaseID, actual xray.PixelBuffer) int {
	v, err := tester.Run(id, actual)
	if err != nil {
		fmt.Fprintf(os.Stderr, "screenshot %s: %v\n", id, err)
		return exitError
	}
	if v.ArtifactErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", v.ArtifactErr)
	}

	store, _ := tester.Store().(*xray.FSStore)
	switch v.Outcome {
	case xray.Matched:
		fmt.Printf("%s: matched\n", id)
		return exitPass
	case xray.Mismatched:
		fmt.Printf("%s: %d of %d pixels differ, diff at %s\n", id, v.Diff.DifferingPixels, actual.Width*actual.Height, store.DiffPath(id))
	case xray.NoBaseline:
		fmt.Printf("%s: no reference; review %s and copy it to %s\n", id, store.ActualPath(id), store.ReferencePath(id))
	}
	return exitFail
}
