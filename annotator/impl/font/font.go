package font

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

type FontProvider interface {
	// Returns a face of the label font at the given size in pixels.
	LabelFace(size float64) xfont.Face
}

type fontProvider struct {
	label *truetype.Font
}

// New loads the label font from a .ttf file. An empty path uses Go Regular.
func New(path string) (FontProvider, error) {
	if path == "" {
		label, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse the default font: %w", err)
		}
		return &fontProvider{label: label}, nil
	}

	label, err := parseFontFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}
	return &fontProvider{label: label}, nil
}

func (fp *fontProvider) LabelFace(size float64) xfont.Face {
	return truetype.NewFace(fp.label, &truetype.Options{Size: size, DPI: 72})
}

func parseFontFile(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(fontBytes)
}
