// Package xray provides screenshot testing for graphical applications such
// as games.
//
// A test renders a frame, hands the captured RGBA pixels to a Tester and
// receives a Verdict. The Tester looks for an approved reference image at
// references/<id>.png, compares it pixel for pixel with the capture and
// writes review artifacts under test_output/<id>/:
//
//	actual.png   the capture from this run (always written)
//	diff.png     differing pixels in opaque magenta, everything else transparent
//	expected.png a copy of the reference, when Config.WriteExpected is set
//
// When no reference exists the capture is written as actual.png and the
// verdict is NoBaseline. Promoting it to a reference is left to a human:
// copy actual.png to references/<id>.png once it looks right.
//
// Comparison is exact by default. A per-channel tolerance can be opted into
// for renderers with small nondeterministic differences.
package xray
