package codec

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/captioner/internal/entity"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

type Decoded struct {
	Image  image.Image
	Format string
}

// Decode reads a JPEG or PNG upload, applying EXIF orientation. maxPixels <= 0
// disables the size check.
func Decode(r io.Reader, maxPixels int) (*Decoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnsupportedFormat, err)
	}
	if format != FormatJPEG && format != FormatPNG {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", entity.ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Decoded{Image: img, Format: format}, nil
}

// ChooseFormat picks the output format. JPEG is only used when asked for and
// the image carries no transparency.
func ChooseFormat(requested string, hasAlpha bool) string {
	switch strings.ToLower(requested) {
	case "jpg", FormatJPEG:
		if !hasAlpha {
			return FormatJPEG
		}
	}
	return FormatPNG
}

func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}

func EncodeBytes(img image.Image, format string) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := Encode(buf, img, format); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func ContentType(format string) string {
	if format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func Extension(format string) string {
	if format == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// IsValidExtension reports whether a file name looks like a supported upload.
func IsValidExtension(ext string) bool {
	validTypes := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
	return validTypes[strings.ToLower(ext)]
}
