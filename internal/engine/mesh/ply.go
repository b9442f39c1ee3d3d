package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// PLY format errors.
var (
	ErrInvalidPLY     = errors.New("invalid PLY data")
	ErrUnsupportedPLY = errors.New("unsupported PLY format")
	ErrTruncatedPLY   = errors.New("truncated PLY data")
)

// plyComponent indexes the per-vertex values a PLY vertex property can fill.
type plyComponent int

const (
	plyX plyComponent = iota
	plyY
	plyZ
	plyNX
	plyNY
	plyNZ
	plyU
	plyV
	plyRed
	plyGreen
	plyBlue
	plyAlpha
	plyComponentCount

	plySkip plyComponent = -1
)

var plyComponents = map[string]plyComponent{
	"x":     plyX,
	"y":     plyY,
	"z":     plyZ,
	"nx":    plyNX,
	"ny":    plyNY,
	"nz":    plyNZ,
	"u":     plyU,
	"s":     plyU,
	"v":     plyV,
	"t":     plyV,
	"red":   plyRed,
	"green": plyGreen,
	"blue":  plyBlue,
	"alpha": plyAlpha,
}

// plyMissingValue fills components a file does not declare.
const plyMissingValue = 0.5

// maxPLYElements bounds element counts so a corrupt header cannot request
// an absurd allocation.
const maxPLYElements = 1 << 24

// plyPrealloc caps up-front slice capacity; larger meshes grow by append.
const plyPrealloc = 1 << 16

type plyElement struct {
	name       string
	count      int
	components []plyComponent
}

// LoadPLY reads an ASCII PLY file from disk.
func LoadPLY(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ParsePLY(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ParsePLY parses an ASCII PLY stream with a vertex and a face element.
// Polygons with more than three vertices are fan-triangulated.
// Vertex colors are not taken from the file; loaded vertices use ColorGreen.
func ParsePLY(r io.Reader) (*Data, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 512), 1<<20)

	elements, err := parsePLYHeader(sc)
	if err != nil {
		return nil, err
	}

	data := &Data{}
	var haveVertex, haveFace bool
	for _, el := range elements {
		switch el.name {
		case "vertex":
			haveVertex = true
			data.Vertices = make([]Vertex, 0, min(el.count, plyPrealloc))
			if err := readPLYVertices(sc, el, data); err != nil {
				return nil, err
			}
		case "face":
			haveFace = true
			data.Indices = make([]uint32, 0, 3*min(el.count, plyPrealloc))
			if err := readPLYFaces(sc, el, data); err != nil {
				return nil, err
			}
		default:
			for range el.count {
				if !sc.Scan() {
					return nil, ErrTruncatedPLY
				}
			}
		}
	}
	if !haveVertex || !haveFace {
		return nil, fmt.Errorf("%w: need vertex and face elements", ErrInvalidPLY)
	}

	for _, idx := range data.Indices {
		if int(idx) >= len(data.Vertices) {
			return nil, fmt.Errorf("%w: index %d out of range (%d vertices)", ErrInvalidPLY, idx, len(data.Vertices))
		}
	}
	return data, nil
}

func parsePLYHeader(sc *bufio.Scanner) ([]plyElement, error) {
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "ply" {
		return nil, fmt.Errorf("%w: missing magic", ErrInvalidPLY)
	}

	var elements []plyElement
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPLY, sc.Text())
			}
		case "comment", "obj_info":
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPLY, sc.Text())
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrInvalidPLY, fields[2])
			}
			if count > maxPLYElements {
				return nil, fmt.Errorf("%w: element %s count %d exceeds %d", ErrInvalidPLY, fields[1], count, maxPLYElements)
			}
			elements = append(elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(elements) == 0 || len(fields) < 3 {
				return nil, fmt.Errorf("%w: property outside element", ErrInvalidPLY)
			}
			el := &elements[len(elements)-1]
			comp, ok := plyComponents[fields[len(fields)-1]]
			if !ok || fields[1] == "list" {
				comp = plySkip
			}
			el.components = append(el.components, comp)
		case "end_header":
			return elements, nil
		default:
			return nil, fmt.Errorf("%w: unknown header line %q", ErrInvalidPLY, sc.Text())
		}
	}
	return nil, ErrTruncatedPLY
}

func readPLYVertices(sc *bufio.Scanner, el plyElement, data *Data) error {
	var values [plyComponentCount]float32
	for i := range el.count {
		if !sc.Scan() {
			return ErrTruncatedPLY
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < len(el.components) {
			return fmt.Errorf("%w: vertex %d has %d values, want %d", ErrInvalidPLY, i, len(fields), len(el.components))
		}
		for c := range values {
			values[c] = plyMissingValue
		}
		for c, comp := range el.components {
			if comp == plySkip {
				continue
			}
			f, err := strconv.ParseFloat(fields[c], 32)
			if err != nil {
				return fmt.Errorf("%w: vertex %d: %v", ErrInvalidPLY, i, err)
			}
			values[comp] = float32(f)
		}
		data.Vertices = append(data.Vertices, Vertex{
			Position: [3]float32{values[plyX], values[plyY], values[plyZ]},
			Normal:   [3]float32{values[plyNX], values[plyNY], values[plyNZ]},
			TexCoord: [2]float32{values[plyU], values[plyV]},
			Color:    ColorGreen,
		})
	}
	return nil
}

func readPLYFaces(sc *bufio.Scanner, el plyElement, data *Data) error {
	for i := range el.count {
		if !sc.Scan() {
			return ErrTruncatedPLY
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			return fmt.Errorf("%w: face %d: too few values", ErrInvalidPLY, i)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 3 || len(fields) < n+1 {
			return fmt.Errorf("%w: face %d: bad vertex count %q", ErrInvalidPLY, i, fields[0])
		}
		idx := make([]uint32, n)
		for k := range n {
			v, err := strconv.ParseUint(fields[k+1], 10, 32)
			if err != nil {
				return fmt.Errorf("%w: face %d: %v", ErrInvalidPLY, i, err)
			}
			idx[k] = uint32(v)
		}
		for k := 1; k+1 < n; k++ {
			data.Indices = append(data.Indices, idx[0], idx[k], idx[k+1])
		}
	}
	return nil
}
