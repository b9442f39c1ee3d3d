package heightmap

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"os"
)

const (
	ddsMagic      = "DDS "
	ddsHeaderSize = 124
	ddsDX10Size   = 20

	ddpfAlphaPixels = 0x1
	ddpfAlpha       = 0x2
	ddpfFourCC      = 0x4
	ddpfRGB         = 0x40
	ddpfLuminance   = 0x20000

	dxgiR16G16B16A16Unorm = 11
	dxgiR8G8B8A8Unorm     = 28
	dxgiR16Unorm          = 56
	dxgiR8Unorm           = 61
	dxgiBC1Unorm          = 71
	dxgiBC1UnormSRGB      = 72
	dxgiBC4Unorm          = 80
)

type ddsFormat int

const (
	ddsMasked ddsFormat = iota
	ddsBC1
	ddsBC4
)

// ddsLayout is the decoded pixel format of the top mip level.
type ddsLayout struct {
	format   ddsFormat
	bitCount int
	mask     uint64
}

// LoadDDS reads a DDS file's top mip level.
func LoadDDS(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read heightmap: %w", err)
	}
	return DecodeDDS(data)
}

// DecodeDDS decodes uncompressed luminance or RGB(A) data of 8 to 64 bits
// per pixel, or BC1/BC4 compressed data. Heights come from the first
// (red or luminance) channel.
func DecodeDDS(data []byte) (*Grid, error) {
	if len(data) < 4+ddsHeaderSize || string(data[:4]) != ddsMagic {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidDDS)
	}
	hdr := data[4 : 4+ddsHeaderSize]
	le := binary.LittleEndian
	if le.Uint32(hdr[0:]) != ddsHeaderSize {
		return nil, fmt.Errorf("%w: header size %d", ErrInvalidDDS, le.Uint32(hdr[0:]))
	}
	h := int(le.Uint32(hdr[8:]))
	w := int(le.Uint32(hdr[12:]))
	if err := checkDimensions(w, h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDDS, err)
	}

	pf := hdr[72:104]
	flags := le.Uint32(pf[4:])
	fourCC := string(pf[8:12])
	body := data[4+ddsHeaderSize:]

	var layout ddsLayout
	switch {
	case flags&ddpfFourCC != 0 && fourCC == "DX10":
		if len(body) < ddsDX10Size {
			return nil, fmt.Errorf("%w: dx10 header truncated", ErrInvalidDDS)
		}
		var err error
		if layout, err = dxgiLayout(le.Uint32(body[0:])); err != nil {
			return nil, err
		}
		body = body[ddsDX10Size:]
	case flags&ddpfFourCC != 0:
		switch fourCC {
		case "DXT1":
			layout.format = ddsBC1
		case "ATI1", "BC4U":
			layout.format = ddsBC4
		default:
			return nil, fmt.Errorf("%w: fourcc %q", ErrUnsupportedFormat, fourCC)
		}
	case flags&(ddpfRGB|ddpfLuminance|ddpfAlpha|ddpfAlphaPixels) != 0:
		layout.bitCount = int(le.Uint32(pf[12:]))
		layout.mask = uint64(le.Uint32(pf[16:]))
		if flags&(ddpfRGB|ddpfLuminance) == 0 {
			layout.mask = uint64(le.Uint32(pf[28:]))
		}
		if layout.bitCount%8 != 0 || layout.bitCount < 8 || layout.bitCount > 32 || layout.mask == 0 {
			return nil, fmt.Errorf("%w: %d-bit pixels with mask %#x", ErrUnsupportedFormat, layout.bitCount, layout.mask)
		}
	default:
		return nil, fmt.Errorf("%w: pixel format flags %#x", ErrUnsupportedFormat, flags)
	}

	switch layout.format {
	case ddsBC1:
		return decodeBlocks(body, w, h, 8, bc1Block)
	case ddsBC4:
		return decodeBlocks(body, w, h, 8, bc4Block)
	default:
		return decodeMasked(body, w, h, layout)
	}
}

func dxgiLayout(format uint32) (ddsLayout, error) {
	switch format {
	case dxgiR8Unorm:
		return ddsLayout{bitCount: 8, mask: 0xff}, nil
	case dxgiR16Unorm:
		return ddsLayout{bitCount: 16, mask: 0xffff}, nil
	case dxgiR8G8B8A8Unorm:
		return ddsLayout{bitCount: 32, mask: 0xff}, nil
	case dxgiR16G16B16A16Unorm:
		return ddsLayout{bitCount: 64, mask: 0xffff}, nil
	case dxgiBC1Unorm, dxgiBC1UnormSRGB:
		return ddsLayout{format: ddsBC1}, nil
	case dxgiBC4Unorm:
		return ddsLayout{format: ddsBC4}, nil
	}
	return ddsLayout{}, fmt.Errorf("%w: dxgi format %d", ErrUnsupportedFormat, format)
}

func decodeMasked(body []byte, w, h int, l ddsLayout) (*Grid, error) {
	bpp := l.bitCount / 8
	if len(body) < w*h*bpp {
		return nil, fmt.Errorf("%w: pixel data truncated", ErrInvalidDDS)
	}
	shift := bits.TrailingZeros64(l.mask)
	maxv := float32(l.mask >> shift)

	g := NewGrid(w, h)
	for i := range g.Heights {
		var px uint64
		for b := bpp - 1; b >= 0; b-- {
			px = px<<8 | uint64(body[i*bpp+b])
		}
		g.Heights[i] = float32((px&l.mask)>>shift) / maxv
	}
	return g, nil
}

// blockFunc decodes one 4x4 block into 16 heights in row order.
type blockFunc func(block []byte, out *[16]float32)

func decodeBlocks(body []byte, w, h, blockSize int, decode blockFunc) (*Grid, error) {
	bw, bh := (w+3)/4, (h+3)/4
	if len(body) < bw*bh*blockSize {
		return nil, fmt.Errorf("%w: block data truncated", ErrInvalidDDS)
	}

	g := NewGrid(w, h)
	var texels [16]float32
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			off := (by*bw + bx) * blockSize
			decode(body[off:off+blockSize], &texels)
			for i, v := range texels {
				x, y := bx*4+i%4, by*4+i/4
				if x < w && y < h {
					g.Set(x, y, v)
				}
			}
		}
	}
	return g, nil
}

// bc1Block decodes the red channel of a BC1 (DXT1) block.
func bc1Block(b []byte, out *[16]float32) {
	c0 := binary.LittleEndian.Uint16(b[0:])
	c1 := binary.LittleEndian.Uint16(b[2:])
	r0, r1 := red565(c0), red565(c1)

	var pal [4]float32
	pal[0], pal[1] = r0, r1
	if c0 > c1 {
		pal[2] = (2*r0 + r1) / 3
		pal[3] = (r0 + 2*r1) / 3
	} else {
		pal[2] = (r0 + r1) / 2
		pal[3] = 0
	}

	idx := binary.LittleEndian.Uint32(b[4:])
	for i := range out {
		out[i] = pal[(idx>>(2*i))&3]
	}
}

func red565(c uint16) float32 {
	r := c >> 11
	return float32(r<<3|r>>2) / 255
}

// bc4Block decodes a BC4 (ATI1) block.
func bc4Block(b []byte, out *[16]float32) {
	r0, r1 := float32(b[0])/255, float32(b[1])/255

	var pal [8]float32
	pal[0], pal[1] = r0, r1
	if b[0] > b[1] {
		for i := 1; i <= 6; i++ {
			pal[i+1] = (float32(7-i)*r0 + float32(i)*r1) / 7
		}
	} else {
		for i := 1; i <= 4; i++ {
			pal[i+1] = (float32(5-i)*r0 + float32(i)*r1) / 5
		}
		pal[6], pal[7] = 0, 1
	}

	var idx uint64
	for i := 7; i >= 2; i-- {
		idx = idx<<8 | uint64(b[i])
	}
	for i := range out {
		out[i] = pal[(idx>>(3*i))&7]
	}
}
