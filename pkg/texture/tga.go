package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// DecodeTGA decodes a TGA image.
// Supports uncompressed true-color (type 2) and RLE compressed (type 10)
// files at 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga header truncated: %w", ErrUnsupportedFormat)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped tga: %w", ErrUnsupportedFormat)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("tga type %d: %w", imageType, ErrUnsupportedFormat)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga bit depth %d: %w", bpp, ErrUnsupportedFormat)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga id field truncated: %w", ErrUnsupportedFormat)
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = d.raw()
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	width       int
	height      int
	bpp         int
	topToBottom bool
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() (color.RGBA, bool) {
	if d.pos+d.bpp > len(d.src) {
		return color.RGBA{}, false
	}
	p := d.src[d.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	d.pos += d.bpp
	return c, true
}

// put stores pixel n of the file's scan order. Bottom-up files (descriptor
// bit 5 clear) are flipped so row 0 is the top of the image.
func (d *tgaDecoder) put(n int, c color.RGBA) {
	x, y := n%d.width, n/d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
}

func (d *tgaDecoder) raw() error {
	for n := range d.width * d.height {
		c, ok := d.next()
		if !ok {
			return fmt.Errorf("tga pixel data truncated: %w", ErrUnsupportedFormat)
		}
		d.put(n, c)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	total := d.width * d.height
	n := 0
	for n < total {
		if d.pos >= len(d.src) {
			return fmt.Errorf("tga rle data truncated: %w", ErrUnsupportedFormat)
		}
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated
			c, ok := d.next()
			if !ok {
				return fmt.Errorf("tga rle data truncated: %w", ErrUnsupportedFormat)
			}
			for ; count > 0 && n < total; count-- {
				d.put(n, c)
				n++
			}
			continue
		}

		// Raw packet: count literal pixels
		for ; count > 0 && n < total; count-- {
			c, ok := d.next()
			if !ok {
				return fmt.Errorf("tga rle data truncated: %w", ErrUnsupportedFormat)
			}
			d.put(n, c)
			n++
		}
	}
	return nil
}
