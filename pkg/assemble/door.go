package assemble

import (
	"fmt"

	"github.com/chazu/lath/pkg/kernel"
	"github.com/chazu/lath/pkg/plan"
)

// Door visual assembly proportions. The frame wraps the opening, the
// panel fills it, and the handle sits at lever height near the latch
// edge. These are display dimensions only; the opening itself is cut by
// the network assembler.
const (
	doorFrameWidth     = 0.05
	doorPanelThickness = 0.04
	doorHandleRadius   = 0.015
	doorHandleLength   = 0.12
	doorHandleInset    = 0.08
	doorHandleHeight   = 1.0
)

// BuildDoor produces the door's visual assembly (frame, panel, handle)
// as one mesh with a material run per part, positioned at the door's
// world transform.
func BuildDoor(k kernel.Kernel, d *plan.Door, w *plan.Wall) (*kernel.Mesh, error) {
	depth := d.Depth(w)
	yaw := w.YawDegrees()
	at := w.PointAt(d.Offset)

	place := func(s kernel.Solid, dx, dy, dz float64) kernel.Solid {
		// Local door frame: x across the opening, y up from the floor,
		// z through the wall. Rotate into the wall, then move to the
		// door's world position.
		s = k.Translate(s, dx, dy, dz)
		s = k.Rotate(s, 0, yaw, 0)
		return k.Translate(s, at.X, at.Y, at.Z)
	}

	assembly := &kernel.Mesh{Name: d.ID}

	// Frame: the opening's outline minus the opening itself.
	outer := k.Box(d.Width+2*doorFrameWidth, d.Height+doorFrameWidth, depth)
	inner := k.Box(d.Width, d.Height, depth*DefaultCutterDepthFactor)
	outer = place(outer, 0, (d.Height+doorFrameWidth)/2, 0)
	inner = place(inner, 0, d.Height/2, 0)
	frame, err := k.Difference(outer, inner)
	k.Release(inner)
	if err != nil {
		// Degenerate frame geometry; show the outline instead.
		frame = outer
	} else {
		k.Release(outer)
	}
	if err := appendPart(k, assembly, frame, "frame"); err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}

	panel := place(k.Box(d.Width*0.96, d.Height*0.98, doorPanelThickness), 0, d.Height/2, 0)
	if err := appendPart(k, assembly, panel, "panel"); err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}

	// Handle axis runs through the wall; the kernel's cylinder axis is
	// already local z.
	handle := place(k.Cylinder(doorHandleLength, doorHandleRadius, 24),
		d.Width/2-doorHandleInset, doorHandleHeight, 0)
	if err := appendPart(k, assembly, handle, "handle"); err != nil {
		return nil, fmt.Errorf("handle: %w", err)
	}

	return assembly, nil
}

// appendPart meshes a solid, appends it to the assembly under the given
// material, and releases the solid.
func appendPart(k kernel.Kernel, assembly *kernel.Mesh, s kernel.Solid, material string) error {
	mesh, err := k.ToMesh(s)
	k.Release(s)
	if err != nil {
		return err
	}
	assembly.Append(mesh, material)
	return nil
}
