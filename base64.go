package xray

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeBase64Buffer decodes a base64-encoded image (optionally a data URL)
// into a PixelBuffer.
func DecodeBase64Buffer(input string) (PixelBuffer, error) {
	raw := stripDataPrefix(strings.TrimSpace(input))

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return PixelBuffer{}, fmt.Errorf("decode base64: %w", err)
	}

	return DecodeBufferBytes(data)
}

// EncodeBufferToBase64 encodes the buffer as PNG and returns a base64 string.
func EncodeBufferToBase64(buf PixelBuffer) (string, error) {
	var out bytes.Buffer
	if err := EncodeBuffer(&out, buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// EncodeBufferToDataURL is EncodeBufferToBase64 with a data:image/png prefix,
// suitable for pasting into a browser.
func EncodeBufferToDataURL(buf PixelBuffer) (string, error) {
	encoded, err := EncodeBufferToBase64(buf)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + encoded, nil
}

func stripDataPrefix(input string) string {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "data:") {
		if idx := strings.Index(input, ","); idx != -1 {
			return input[idx+1:]
		}
	}
	return input
}
