package charts

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontSet holds the faces used for chart text. Go fonts cover Cyrillic,
// which the subject labels and question types need.
type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func loadFonts() (fontSet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("parse regular font: %w", err)
	}

	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("parse bold font: %w", err)
	}

	return fontSet{regular: regular, bold: bold}, nil
}
