package xray

import (
	"fmt"
	"image"
	"image/draw"
)

// PixelBuffer is a row-major RGBA frame with straight (non-premultiplied)
// alpha, four bytes per pixel.
//
// A PixelBuffer is treated as immutable once captured. Functions in this
// package never modify the Pix slice of a buffer they are given.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer validates the dimensions against the pixel data and returns
// a buffer wrapping pix.
func NewPixelBuffer(width, height int, pix []byte) (PixelBuffer, error) {
	b := PixelBuffer{Width: width, Height: height, Pix: pix}
	if err := b.Validate(); err != nil {
		return PixelBuffer{}, err
	}
	return b, nil
}

// NewBlankBuffer allocates a fully transparent buffer.
func NewBlankBuffer(width, height int) PixelBuffer {
	return PixelBuffer{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Validate reports whether the buffer satisfies len(Pix) == Width*Height*4
// with positive dimensions.
func (b PixelBuffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid buffer dimensions %dx%d", b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("buffer length mismatch: have %d, want %d for %dx%d", len(b.Pix), want, b.Width, b.Height)
	}
	return nil
}

// Size returns the buffer dimensions as a point.
func (b PixelBuffer) Size() image.Point {
	return image.Pt(b.Width, b.Height)
}

// RGBA returns the four channels of the pixel at (x, y).
func (b PixelBuffer) RGBA(x, y int) [4]byte {
	i := (y*b.Width + x) * 4
	return [4]byte{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

// Clone returns a deep copy of the buffer.
func (b PixelBuffer) Clone() PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Image wraps a copy of the pixels in an *image.NRGBA anchored at the origin.
func (b PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// BufferFromImage converts any image into a PixelBuffer. The result is
// anchored at the origin regardless of the source bounds.
func BufferFromImage(img image.Image) (PixelBuffer, error) {
	if img == nil {
		return PixelBuffer{}, fmt.Errorf("nil image provided")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return PixelBuffer{}, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	return PixelBuffer{Width: width, Height: height, Pix: cloneToNRGBA(img).Pix}, nil
}

// cloneToNRGBA copies the image into a tightly packed NRGBA buffer.
func cloneToNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if n, ok := src.(*image.NRGBA); ok && n.Stride == 4*bounds.Dx() {
		start := n.PixOffset(bounds.Min.X, bounds.Min.Y)
		copy(dst.Pix, n.Pix[start:start+len(dst.Pix)])
		return dst
	}
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
