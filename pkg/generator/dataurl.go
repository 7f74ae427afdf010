// dataurl.go - PNG data URLs and download filenames.
package generator

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// DownloadFilename is the name given to a downloaded poster.
const DownloadFilename = "kala-sahayak-poster.png"

const pngDataURLPrefix = "data:image/png;base64,"

// ErrNotDataURL is returned for strings that are not base64 data URLs.
var ErrNotDataURL = errors.New("not a base64 data URL")

// PortfolioFilename is the download name of a saved portfolio poster.
func PortfolioFilename(id int64) string {
	return fmt.Sprintf("kala-portfolio-%d.png", id)
}

// DataURL encodes img as a "data:image/png;base64," URL.
func DataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, Config{Format: FormatPNG}); err != nil {
		return "", err
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURLBytes returns the MIME type and payload of a base64 data URL.
func DecodeDataURLBytes(s string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mimeType, data, nil
}

// DecodeDataURL decodes the image held in a base64 data URL.
func DecodeDataURL(s string) (image.Image, error) {
	_, data, err := DecodeDataURLBytes(s)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode data URL image: %w", err)
	}
	return img, nil
}
