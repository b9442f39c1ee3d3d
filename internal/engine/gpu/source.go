package gpu

import (
	"unsafe"
)

// BufferSource is either raw bytes to upload or an existing buffer handle.
// It is resolved once when a mesh is created.
type BufferSource interface {
	resolve(create func([]byte) (Buffer, error)) (Buffer, bool, error)
}

// RawBytes is buffer content that still has to be uploaded.
type RawBytes []byte

// BufferHandle is an already uploaded buffer, possibly shared.
type BufferHandle Buffer

func (r RawBytes) resolve(create func([]byte) (Buffer, error)) (Buffer, bool, error) {
	b, err := create(r)
	return b, true, err
}

func (h BufferHandle) resolve(func([]byte) (Buffer, error)) (Buffer, bool, error) {
	return Buffer(h), false, nil
}

// ResolveVertices resolves src into a vertex buffer. owned reports whether the
// buffer was created here and belongs to the caller.
func ResolveVertices(dev Device, src BufferSource) (b Buffer, owned bool, err error) {
	return src.resolve(dev.CreateVertexBuffer)
}

// ResolveIndices resolves src into an index buffer.
func ResolveIndices(dev Device, src BufferSource) (b Buffer, owned bool, err error) {
	return src.resolve(dev.CreateIndexBuffer)
}

// Bytes reinterprets a slice of plain values as bytes without copying.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
