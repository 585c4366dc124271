// Package vec3 provides a packed 3-component numeric vector.
//
// Packed is a storage type: three scalars laid out contiguously with
// no padding beyond the scalar's own alignment, suitable for dense
// arrays and binary interchange. It intentionally carries no vector
// math; it only stores and exposes its components.
package vec3

// Scalar is the set of component types a Packed vector can hold.
type Scalar interface {
	~float32 | ~float64 | ~int32
}

// Packed is a 3-component vector of T.
type Packed[T Scalar] struct {
	X, Y, Z T
}

// Common instantiations.
type (
	Packed3f = Packed[float32]
	Packed3i = Packed[int32]
)

// New builds a vector from its three components.
func New[T Scalar](x, y, z T) Packed[T] {
	return Packed[T]{X: x, Y: y, Z: z}
}

// Splat builds a vector with all components set to v.
func Splat[T Scalar](v T) Packed[T] {
	return Packed[T]{X: v, Y: v, Z: v}
}

// FromSlice builds a vector from the first three elements of data.
// It panics if data holds fewer than three elements.
func FromSlice[T Scalar](data []T) Packed[T] {
	if len(data) < 3 {
		panic("vec3: FromSlice needs at least 3 elements")
	}
	return Packed[T]{X: data[0], Y: data[1], Z: data[2]}
}

// Set replaces all three components.
func (p *Packed[T]) Set(x, y, z T) {
	p.X, p.Y, p.Z = x, y, z
}

// At returns component i (0=X, 1=Y, 2=Z). It panics out of range.
func (p Packed[T]) At(i int) T {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	case 2:
		return p.Z
	}
	panic("vec3: component index out of range")
}

// SetAt replaces component i (0=X, 1=Y, 2=Z). It panics out of range.
func (p *Packed[T]) SetAt(i int, v T) {
	switch i {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	case 2:
		p.Z = v
	default:
		panic("vec3: component index out of range")
	}
}

// Slice returns the components as a fixed-size array.
func (p Packed[T]) Slice() [3]T {
	return [3]T{p.X, p.Y, p.Z}
}
