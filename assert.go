package xray

import "image"

// TB is the part of testing.TB the assertion helpers use.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Logf(format string, args ...any)
}

// Assert runs the test and reports the result on tb. Mismatches, missing
// baselines and fatal errors fail the test; artifact write failures are only
// logged.
func (t *Tester) Assert(tb TB, id TestCaseID, actual PixelBuffer, opts ...CompareOption) Verdict {
	tb.Helper()
	v, err := t.Run(id, actual, opts...)
	t.report(tb, id, v, err)
	return v
}

// AssertCapture is Assert for a frame grabbed through c.
func (t *Tester) AssertCapture(tb TB, id TestCaseID, c Capturer, rect image.Rectangle, opts ...CompareOption) Verdict {
	tb.Helper()
	v, err := t.RunCapture(id, c, rect, opts...)
	t.report(tb, id, v, err)
	return v
}

func (t *Tester) report(tb TB, id TestCaseID, v Verdict, err error) {
	tb.Helper()
	if err != nil {
		tb.Errorf("screenshot %s: %v", id, err)
		return
	}
	if v.ArtifactErr != nil {
		tb.Logf("screenshot %s: %v", v.ID, v.ArtifactErr)
	}

	fsStore, _ := t.store.(*FSStore)
	switch v.Outcome {
	case NoBaseline:
		if fsStore != nil {
			tb.Errorf("%v; review %s and copy it to %s to accept it", v.Err(), fsStore.ActualPath(v.ID), fsStore.ReferencePath(v.ID))
			return
		}
		tb.Errorf("%v", v.Err())
	case Mismatched:
		if fsStore != nil {
			tb.Errorf("%v; see %s", v.Err(), fsStore.DiffPath(v.ID))
			return
		}
		tb.Errorf("%v", v.Err())
	}
}

// AssertScreenshot runs a test with the default configuration and reports
// the result on tb.
//
//	func TestInitialRender(t *testing.T) {
//		dc := gg.NewContext(200, 200)
//		drawScene(dc)
//		buf, _ := xray.CaptureImage(dc.Image(), image.Rectangle{})
//		xray.AssertScreenshot(t, "initial_render", buf)
//	}
func AssertScreenshot(tb TB, id TestCaseID, actual PixelBuffer, opts ...CompareOption) Verdict {
	tb.Helper()
	t, err := getDefaultTester()
	if err != nil {
		tb.Errorf("screenshot %s: %v", id, err)
		return Verdict{}
	}
	return t.Assert(tb, id, actual, opts...)
}
