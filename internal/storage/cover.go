package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	coverMaxSide = 800
	coverQuality = 85
)

var ErrNotImage = errors.New("file is not a supported image")

// Cover is a normalized JPEG ready for upload.
type Cover struct {
	Key  string
	Data []byte
}

func (c Cover) Size() int64 { return int64(len(c.Data)) }

func (c Cover) Reader() io.Reader { return bytes.NewReader(c.Data) }

// ProcessCover decodes an uploaded image, fits it into 800x800 and re-encodes it as JPEG.
func ProcessCover(bookID string, r io.Reader) (Cover, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return Cover{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	b := img.Bounds()
	if b.Dx() > coverMaxSide || b.Dy() > coverMaxSide {
		img = imaging.Fit(img, coverMaxSide, coverMaxSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(coverQuality)); err != nil {
		return Cover{}, fmt.Errorf("encode cover: %w", err)
	}
	return Cover{
		Key:  fmt.Sprintf("covers/%s-%s.jpg", bookID, uuid.NewString()[:8]),
		Data: buf.Bytes(),
	}, nil
}
