// Package dtype implements Vortex's logical type tree and the Scalar
// value type used for literals and statistics.
//
// A DType is an algebraic sum: Null, Bool, a signed/unsigned/float
// Primitive of a given bit width, Utf8, Binary, Struct (ordered named
// fields), List (single element type), or Extension (an opaque id plus
// metadata layered over a storage DType). Every node carries its own
// nullability; there is no type-level nullable wrapper.
//
// # Key functions
//
//   - [DType.IsAssignableFrom]: cast-compatibility check (widening/nullability only)
//   - [DType.Equal]: structural equality (field order is semantic for Struct)
//   - [Scalar]: a DType-tagged value, used as expression literals and statistics
package dtype
