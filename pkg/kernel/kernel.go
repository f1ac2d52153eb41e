// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling and
// boolean operations behind this interface. The kernel abstraction
// allows swapping backends without changing the rest of the system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Boolean operations may fail under degenerate overlaps; failure is an
// expected outcome, not a bug, and callers decide how to proceed.
// Intermediate solids are owned by exactly one caller at a time and must
// be handed to Release the moment they are superseded, so backends with
// native memory (manifold) do not grow without bound across repeated
// boolean operations.
type Kernel interface {
	// Primitives. Solids are centered at the origin.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations.
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms.
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Release frees a solid that is no longer needed. Backends without
	// native resources may treat it as a no-op.
	Release(s Solid)

	// Mesh output.
	ToMesh(s Solid) (*Mesh, error)
}
