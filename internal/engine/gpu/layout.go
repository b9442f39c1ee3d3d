package gpu

import (
	"fmt"
	"reflect"
	"strings"
)

// VertexFormat is the GPU-side format of one vertex attribute.
type VertexFormat int

// Supported attribute formats.
const (
	FormatInvalid VertexFormat = iota
	FormatFloat2
	FormatFloat3
	FormatFloat4
	FormatUByte4N
)

// Components returns the number of components and the byte size of f.
func (f VertexFormat) Components() (n int, size int) {
	switch f {
	case FormatFloat2:
		return 2, 8
	case FormatFloat3:
		return 3, 12
	case FormatFloat4:
		return 4, 16
	case FormatUByte4N:
		return 4, 4
	}
	return 0, 0
}

func (f VertexFormat) String() string {
	switch f {
	case FormatFloat2:
		return "float2"
	case FormatFloat3:
		return "float3"
	case FormatFloat4:
		return "float4"
	case FormatUByte4N:
		return "ubyte4n"
	}
	return "invalid"
}

// Attribute is one entry of a vertex layout. Location follows field order.
type Attribute struct {
	Name     string
	Location uint32
	Format   VertexFormat
	Offset   int
}

// Layout describes an interleaved single-buffer vertex format.
type Layout struct {
	Stride     int
	Attributes []Attribute
}

// LayoutOf derives a layout from a struct value by reflection over its
// `vertex:"name[,normalized]"` tags. Untagged fields are skipped.
// [2]float32, [3]float32 and [4]float32 map to float vectors; a uint32 or
// [4]uint8 tagged normalized maps to four normalized bytes.
func LayoutOf(vertex any) (Layout, error) {
	t := reflect.TypeOf(vertex)
	if t == nil || t.Kind() != reflect.Struct {
		return Layout{}, fmt.Errorf("vertex layout: %v is not a struct", t)
	}

	layout := Layout{Stride: int(t.Size())}
	for i := range t.NumField() {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("vertex")
		if !ok || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		format := formatOf(field.Type, opts == "normalized")
		if format == FormatInvalid {
			return Layout{}, fmt.Errorf("vertex layout: field %s has unsupported type %v", field.Name, field.Type)
		}
		layout.Attributes = append(layout.Attributes, Attribute{
			Name:     name,
			Location: uint32(len(layout.Attributes)),
			Format:   format,
			Offset:   int(field.Offset),
		})
	}
	if len(layout.Attributes) == 0 {
		return Layout{}, fmt.Errorf("vertex layout: %v has no vertex-tagged fields", t)
	}
	return layout, nil
}

// MustLayoutOf is LayoutOf for static vertex types; it panics on error.
func MustLayoutOf(vertex any) Layout {
	l, err := LayoutOf(vertex)
	if err != nil {
		panic(err)
	}
	return l
}

func formatOf(t reflect.Type, normalized bool) VertexFormat {
	switch {
	case t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Float32:
		switch t.Len() {
		case 2:
			return FormatFloat2
		case 3:
			return FormatFloat3
		case 4:
			return FormatFloat4
		}
	case normalized && t.Kind() == reflect.Uint32:
		return FormatUByte4N
	case normalized && t.Kind() == reflect.Array && t.Len() == 4 && t.Elem().Kind() == reflect.Uint8:
		return FormatUByte4N
	}
	return FormatInvalid
}
