package main

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"

	xray "github.com/gcslaoli/xray-go"
)

const squareSide = 50

// squareScene draws a red square rotating about the centre of a green
// window, rendered in software by gg.
type squareScene struct {
	dc   *gg.Context
	size int
}

func newSquareScene(size int) (*squareScene, error) {
	if size < squareSide {
		return nil, fmt.Errorf("size %d smaller than the square (%d)", size, squareSide)
	}
	return &squareScene{dc: gg.NewContext(size, size), size: size}, nil
}

// Render draws one frame with the square rotated by angle degrees.
func (s *squareScene) Render(angle float64) error {
	s.dc.ClearWithColor(gg.RGB(0, 1, 0))

	c := float64(s.size) / 2
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.Translate(c, c)
	s.dc.Rotate(angle * math.Pi / 180)
	s.dc.DrawRectangle(-squareSide/2, -squareSide/2, squareSide, squareSide)
	s.dc.SetRGB(1, 0, 0)
	return s.dc.Fill()
}

func (s *squareScene) Capture(rect image.Rectangle) (xray.PixelBuffer, error) {
	return xray.ImageCapturer{Source: s.dc}.Capture(rect)
}

func (s *squareScene) Close() error {
	return s.dc.Close()
}
