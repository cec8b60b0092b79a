package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // Register BMP decoder
)

// Load reads a texture file. The format is chosen by extension: .tga uses
// the built-in decoder; .png, .jpg, .jpeg and .bmp go through image.Decode.
func Load(path string) (*Texture, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".tga", ".png", ".jpg", ".jpeg", ".bmp":
	default:
		return nil, fmt.Errorf("load %s: extension %q: %w", path, ext, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}

	tex, err := Decode(data, ext)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tex, nil
}

// Decode decodes encoded image bytes. ext selects the TGA decoder when it
// is ".tga"; anything else is sniffed by image.Decode.
func Decode(data []byte, ext string) (*Texture, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(ext, ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}
