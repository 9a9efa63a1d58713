package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// ErrDecode reports bytes that do not parse as JPEG or PNG.
var ErrDecode = errors.New("bestand is geen geldige JPG- of PNG-afbeelding")

// jpegQuality is the fixed re-encode quality for lossy output.
const jpegQuality = 85

// Bounds is the bounding box an image class must fit.
type Bounds struct {
	MinW, MinH int
	MaxW, MaxH int
}

// Result carries the normalized image and what happened to it.
type Result struct {
	Data    []byte
	Format  string
	Resized bool
	OrigW   int
	OrigH   int
	Width   int
	Height  int
}

// Normalize fits raw image bytes inside the class bounds using a single
// uniform scale factor per step, so the aspect ratio is always preserved and
// nothing is ever cropped. Images already inside the bounds pass through
// re-encoded at the fixed quality setting.
func Normalize(data []byte, b Bounds) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	switch format {
	case "jpeg", "png":
	default:
		return nil, ErrDecode
	}

	origW := img.Bounds().Dx()
	origH := img.Bounds().Dy()
	if origW <= 0 || origH <= 0 {
		return nil, ErrDecode
	}

	newW, newH := origW, origH
	if newW < b.MinW || newH < b.MinH {
		scale := math.Max(float64(b.MinW)/float64(newW), float64(b.MinH)/float64(newH))
		newW = int(math.Round(float64(newW) * scale))
		newH = int(math.Round(float64(newH) * scale))
	}
	if newW > b.MaxW || newH > b.MaxH {
		scale := math.Min(float64(b.MaxW)/float64(newW), float64(b.MaxH)/float64(newH))
		newW = int(math.Round(float64(newW) * scale))
		newH = int(math.Round(float64(newH) * scale))
	}

	resized := newW != origW || newH != origH
	if resized {
		dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	buf := &bytes.Buffer{}
	switch format {
	case "jpeg":
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case "png":
		if err := png.Encode(buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}

	return &Result{
		Data:    buf.Bytes(),
		Format:  format,
		Resized: resized,
		OrigW:   origW,
		OrigH:   origH,
		Width:   newW,
		Height:  newH,
	}, nil
}
