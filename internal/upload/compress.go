package upload

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	"github.com/nhle/siteledger/internal/model"
)

// compressible lists the media types that are resized and re-encoded.
var compressible = []string{"image/jpeg", "image/jpg", "image/png", "image/gif"}

// Compressor shrinks images to fit within MaxWidth x MaxHeight and
// re-encodes them as JPEG.
type Compressor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewCompressor builds a Compressor from the upload settings.
func NewCompressor(cfg model.UploadConfig) Compressor {
	return Compressor{MaxWidth: cfg.MaxWidth, MaxHeight: cfg.MaxHeight, Quality: cfg.JPEGQuality}
}

// DetectType sniffs the media type of data.
func DetectType(data []byte) string {
	return mimetype.Detect(data).String()
}

// Compress returns the bytes to store and their media type. Non-image input
// passes through unchanged.
func (c Compressor) Compress(data []byte, mediaType string) ([]byte, string, error) {
	if mediaType == "" {
		mediaType = DetectType(data)
	}
	if !mimetype.EqualsAny(mediaType, compressible...) {
		return data, mediaType, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %v: %w", mediaType, err, model.ErrCompressionFailed)
	}

	src := img.Bounds()
	w, h := fit(src.Dx(), src.Dy(), c.MaxWidth, c.MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)

	quality := c.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("encoding jpeg: %v: %w", err, model.ErrCompressionFailed)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// fit scales w x h down to fit within maxW x maxH, keeping the aspect
// ratio. Images already inside the box, and non-positive limits, are left
// as is.
func fit(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Max(1, math.Round(float64(w)*scale)))
	nh := int(math.Max(1, math.Round(float64(h)*scale)))
	return nw, nh
}
