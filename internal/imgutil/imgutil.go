package imgutil

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultQuality is used when a caller passes an out-of-range JPEG quality.
const DefaultQuality = 90

// Decode reads any format registered with the image package (jpeg, png, gif, webp).
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("empty image data")
	}
	return image.Decode(bytes.NewReader(data))
}

// Square scales src to size x size. Aspect ratio is not preserved.
// A non-positive size returns src untouched.
func Square(src image.Image, size int) image.Image {
	if size <= 0 {
		return src
	}
	b := src.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// EncodeJPEG encodes img with the given quality (1..100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SquareJPEG decodes data, scales it to size x size and re-encodes it as JPEG.
func SquareJPEG(data []byte, size, quality int) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(Square(img, size), quality)
}
