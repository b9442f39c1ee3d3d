package texture

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidTGA is returned for malformed or unsupported TGA data.
var ErrInvalidTGA = errors.New("invalid tga")

// TGA image types handled by DecodeTGA.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
	tgaHeaderSize   = 18
)

// DecodeTGA decodes an uncompressed or RLE true-color TGA (24 or 32 bpp).
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: header truncated", ErrInvalidTGA)
	}
	idLen := int(data[0])
	if data[1] != 0 {
		return nil, fmt.Errorf("%w: color-mapped images not supported", ErrInvalidTGA)
	}
	kind := data[2]
	if kind != tgaTrueColor && kind != tgaTrueColorRLE {
		return nil, fmt.Errorf("%w: image type %d", ErrInvalidTGA, kind)
	}
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrInvalidTGA, bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidTGA)
	}
	start := tgaHeaderSize + idLen
	if start > len(data) {
		return nil, fmt.Errorf("%w: id field truncated", ErrInvalidTGA)
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[start:],
		bytesPer:    bpp / 8,
		topToBottom: data[17]&0x20 != 0,
		width:       width,
		height:      height,
	}
	var err error
	if kind == tgaTrueColor {
		err = d.raw(width * height)
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
	n           int
	bytesPer    int
	topToBottom bool
	width       int
	height      int
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() ([4]byte, error) {
	if d.pos+d.bytesPer > len(d.src) {
		return [4]byte{}, fmt.Errorf("%w: pixel data truncated", ErrInvalidTGA)
	}
	p := d.src[d.pos:]
	px := [4]byte{p[2], p[1], p[0], 255}
	if d.bytesPer == 4 {
		px[3] = p[3]
	}
	d.pos += d.bytesPer
	return px, nil
}

// put stores the next pixel in file order; rows are stored bottom-up
// unless the descriptor says otherwise.
func (d *tgaDecoder) put(px [4]byte) {
	x, y := d.n%d.width, d.n/d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	copy(d.img.Pix[d.img.PixOffset(x, y):], px[:])
	d.n++
}

func (d *tgaDecoder) raw(count int) error {
	total := d.width * d.height
	for i := 0; i < count && d.n < total; i++ {
		px, err := d.next()
		if err != nil {
			return err
		}
		d.put(px)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	total := d.width * d.height
	for d.n < total {
		if d.pos >= len(d.src) {
			return fmt.Errorf("%w: rle data truncated", ErrInvalidTGA)
		}
		header := d.src[d.pos]
		d.pos++
		count := int(header&0x7f) + 1
		if header&0x80 == 0 {
			if err := d.raw(count); err != nil {
				return err
			}
			continue
		}
		px, err := d.next()
		if err != nil {
			return err
		}
		for i := 0; i < count && d.n < total; i++ {
			d.put(px)
		}
	}
	return nil
}
