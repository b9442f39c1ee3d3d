package heightmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// LoadPPM reads a binary netpbm file (P5 graymap or P6 pixmap).
func LoadPPM(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()
	return DecodePPM(f)
}

// DecodePPM decodes P5/P6 data with 8-bit samples, or big-endian 16-bit
// samples when maxval exceeds 255. Heights come from the first channel.
func DecodePPM(r io.Reader) (*Grid, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, 2)
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: magic: %v", ErrInvalidPPM, err)
	}
	var channels int
	switch string(magic) {
	case "P5":
		channels = 1
	case "P6":
		channels = 3
	default:
		return nil, fmt.Errorf("%w: magic %q", ErrInvalidPPM, magic)
	}

	var fields [3]int
	for i := range fields {
		v, err := readHeaderInt(br)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	w, h, maxval := fields[0], fields[1], fields[2]
	if err := checkDimensions(w, h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPPM, err)
	}
	if maxval <= 0 || maxval > 0xffff {
		return nil, fmt.Errorf("%w: maxval %d", ErrInvalidPPM, maxval)
	}

	// Exactly one whitespace byte separates the header from the raster.
	if _, err := br.ReadByte(); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidPPM, err)
	}

	sampleBytes := 1
	if maxval > 0xff {
		sampleBytes = 2
	}
	row := make([]byte, w*channels*sampleBytes)
	g := NewGrid(w, h)
	scale := 1 / float32(maxval)
	for y := 0; y < h; y++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("%w: raster row %d: %v", ErrInvalidPPM, y, err)
		}
		for x := 0; x < w; x++ {
			o := x * channels * sampleBytes
			v := int(row[o])
			if sampleBytes == 2 {
				v = v<<8 | int(row[o+1])
			}
			g.Set(x, y, min(float32(v)*scale, 1))
		}
	}
	return g, nil
}

// readHeaderInt reads one decimal header field, skipping whitespace and
// '#' comments.
func readHeaderInt(br *bufio.Reader) (int, error) {
	var c byte
	var err error
	for {
		if c, err = br.ReadByte(); err != nil {
			return 0, fmt.Errorf("%w: header: %v", ErrInvalidPPM, err)
		}
		if c == '#' {
			if _, err = br.ReadString('\n'); err != nil {
				return 0, fmt.Errorf("%w: header comment: %v", ErrInvalidPPM, err)
			}
			continue
		}
		if !isSpace(c) {
			break
		}
	}

	n := 0
	digits := 0
	for {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: unexpected header byte %q", ErrInvalidPPM, c)
		}
		n = n*10 + int(c-'0')
		digits++
		if digits > 9 {
			return 0, fmt.Errorf("%w: header value too long", ErrInvalidPPM)
		}
		if c, err = br.ReadByte(); err != nil {
			return 0, fmt.Errorf("%w: header: %v", ErrInvalidPPM, err)
		}
		if isSpace(c) {
			// the caller consumes the separator before the raster
			if err := br.UnreadByte(); err != nil {
				return 0, err
			}
			return n, nil
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
