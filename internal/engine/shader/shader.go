// Package shader holds the built-in GLSL programs.
//
// Vertex inputs are named after the mesh.Vertex layout tags so devices can
// bind attribute locations by name.
package shader

import (
	"embed"
	"fmt"

	"github.com/Faultbox/pipo/internal/engine/gpu"
)

//go:embed glsl/*.vert glsl/*.frag
var sources embed.FS

// Built-in program names.
const (
	Lit   = "lit"
	Unlit = "unlit"
)

var programs = map[string][2]string{
	Lit:   {"glsl/mesh.vert", "glsl/lit.frag"},
	Unlit: {"glsl/mesh.vert", "glsl/unlit.frag"},
}

// Desc returns the descriptor of a built-in program.
func Desc(name string) (gpu.ShaderDesc, error) {
	files, ok := programs[name]
	if !ok {
		return gpu.ShaderDesc{}, fmt.Errorf("unknown shader %q", name)
	}
	vs, err := sources.ReadFile(files[0])
	if err != nil {
		return gpu.ShaderDesc{}, fmt.Errorf("shader %s: %w", name, err)
	}
	fs, err := sources.ReadFile(files[1])
	if err != nil {
		return gpu.ShaderDesc{}, fmt.Errorf("shader %s: %w", name, err)
	}
	return gpu.ShaderDesc{Name: name, VertexSource: string(vs), FragmentSource: string(fs)}, nil
}

// MustDesc is Desc for names known at compile time.
func MustDesc(name string) gpu.ShaderDesc {
	d, err := Desc(name)
	if err != nil {
		panic(err)
	}
	return d
}
