package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Canvas sizes for normalized article images. Uploads are re-encoded to
// JPEG and cropped to fill the canvas (cover fit), never distorted.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
	ThumbWidth   = 480
	ThumbHeight  = 270

	jpegQuality = 85
)

// ErrDecode marks an upload whose bytes could not be decoded as an image.
// Callers must abort the surrounding write when they see it.
var ErrDecode = errors.New("cannot decode image")

// Normalized carries the two JPEG renditions derived from one upload.
type Normalized struct {
	Image     []byte // CanvasWidth x CanvasHeight
	Thumbnail []byte // ThumbWidth x ThumbHeight
}

// Normalize decodes raw upload bytes and produces the fixed-size JPEG
// renditions. It is applied only to newly supplied images; stored images
// are never re-processed.
func Normalize(raw []byte) (*Normalized, error) {
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	full, err := encodeJPEG(imaging.Fill(src, CanvasWidth, CanvasHeight, imaging.Center, imaging.Lanczos))
	if err != nil {
		return nil, err
	}
	thumb, err := encodeJPEG(imaging.Fill(src, ThumbWidth, ThumbHeight, imaging.Center, imaging.Lanczos))
	if err != nil {
		return nil, err
	}
	return &Normalized{Image: full, Thumbnail: thumb}, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
