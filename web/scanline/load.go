package scanline

import (
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotFound          = errors.New("image not found")
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
)

type LoadError struct {
	Message string
	Kind    error
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LoadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Source is a decoded image that passed format validation.
type Source struct {
	Path   string
	Format string
	Grid   *Grid
}

// Load decodes path and accepts only 3-channel 8-bit images. A missing or
// undecodable file yields ErrNotFound; any other layout ErrUnsupportedFormat.
// The detected format is returned with the error so callers can report it.
func Load(path string) (*Source, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("Image '%s' not found!", path),
			Kind:    ErrNotFound,
			Cause:   err,
		}
	}

	src := &Source{Path: path, Format: FormatOf(img)}
	if src.Format != SupportedFormat {
		return src, &LoadError{
			Message: fmt.Sprintf("Ops, format '%s' not supported!", src.Format),
			Kind:    ErrUnsupportedFormat,
		}
	}

	src.Grid = GridFromImage(img)
	if src.Grid.Empty() {
		return src, &LoadError{
			Message: fmt.Sprintf("Image '%s' not found!", path),
			Kind:    ErrNotFound,
			Cause:   errors.New("decoded image is empty"),
		}
	}
	return src, nil
}
