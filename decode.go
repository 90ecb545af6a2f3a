package xray

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	// Register lossless formats a reference may be curated in, plus the
	// common lossy ones so captures from other tools can still be compared.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Decode reads an image from the reader, returning the decoded image and the
// detected format string ("png", "webp", "tiff", etc.). Unknown formats fail
// with ErrUnsupportedFormat, malformed data with ErrCorruptData.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return img, format, nil
}

// DecodeBuffer decodes an image straight into a PixelBuffer.
func DecodeBuffer(r io.Reader) (PixelBuffer, error) {
	img, _, err := Decode(r)
	if err != nil {
		return PixelBuffer{}, err
	}

	buf, err := BufferFromImage(img)
	if err != nil {
		return PixelBuffer{}, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return buf, nil
}

// DecodeBufferBytes is DecodeBuffer for an in-memory encoded image.
func DecodeBufferBytes(data []byte) (PixelBuffer, error) {
	if len(data) == 0 {
		return PixelBuffer{}, fmt.Errorf("%w: empty image data", ErrCorruptData)
	}
	return DecodeBuffer(bytes.NewReader(data))
}

// EncodePNG writes the provided image to the writer as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// EncodeBuffer writes the buffer to w as a PNG. Straight alpha is kept as is,
// so decoding the result yields the same bytes.
func EncodeBuffer(w io.Writer, buf PixelBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	return EncodePNG(w, buf.Image())
}
