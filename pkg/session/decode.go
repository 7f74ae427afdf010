package session

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP
)

// decodeImage decodes an uploaded photo, applying its EXIF orientation, and
// sniffs its MIME type.
func decodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &DecodeError{Err: errors.New("empty upload")}
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", &DecodeError{Err: fmt.Errorf("unsupported content type %q", mimeType)}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", &DecodeError{Err: errors.New("image has no pixels")}
	}
	return img, mimeType, nil
}
