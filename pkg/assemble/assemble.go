// Package assemble turns resolved wall geometry into renderable meshes
// using a geometry kernel. Each wall network folds into a single solid
// via pairwise boolean unions, door openings are carved out with boolean
// differences, and the result is meshed once per network. Boolean
// failures are tolerated step by step: the running solid keeps its last
// good value and the failed operand is dropped, never retried.
package assemble

import (
	"fmt"

	"github.com/chazu/lath/pkg/joint"
	"github.com/chazu/lath/pkg/kernel"
	"github.com/chazu/lath/pkg/network"
	"github.com/chazu/lath/pkg/plan"
)

// DefaultCutterDepthFactor oversizes door cutters across the wall so the
// cut fully penetrates both faces and no coplanar-face artifacts remain.
const DefaultCutterDepthFactor = 1.2

// Options configures an assembly pass.
type Options struct {
	Joint             joint.Options
	CutterDepthFactor float64
}

// DefaultOptions returns the standard assembly settings.
func DefaultOptions() Options {
	return Options{
		Joint:             joint.DefaultOptions(),
		CutterDepthFactor: DefaultCutterDepthFactor,
	}
}

func (o Options) normalized() Options {
	if o.CutterDepthFactor <= 0 {
		o.CutterDepthFactor = DefaultCutterDepthFactor
	}
	return o
}

// NetworkMesh is one network's unified mesh plus the metadata UI layers
// need to map picks back to walls.
type NetworkMesh struct {
	Mesh    *kernel.Mesh
	WallIDs []string // member walls, in network order
	Merged  bool     // true if the mesh is a union of several walls
}

// Result is the output of a full rebuild.
type Result struct {
	Networks []*NetworkMesh
	Doors    []*kernel.Mesh                 // one visual assembly per door
	Extended map[string]*joint.ExtendedWall // per-wall trimmed endpoints
	Problems []string                       // non-fatal issues, for the UI
}

// Build runs the whole pipeline on a plan snapshot: partition walls into
// networks, resolve junction geometry, assemble one mesh per network,
// and build the door visual assemblies. The pass is synchronous and
// best-effort: a bad junction or failed boolean never aborts the rest of
// the model.
func Build(k kernel.Kernel, p *plan.Plan, opts Options) *Result {
	opts = opts.normalized()
	opts.Joint.Strategy = p.Defaults.Strategy
	if p.Defaults.Tolerance > 0 {
		opts.Joint.Tolerance = p.Defaults.Tolerance
	}
	if p.Defaults.OverlapMargin > 0 {
		opts.Joint.OverlapMargin = p.Defaults.OverlapMargin
	}

	res := &Result{Extended: make(map[string]*joint.ExtendedWall)}

	analysis := network.Analyze(p.Walls, opts.Joint.Tolerance, network.DefaultCollinearThreshold)
	for _, net := range analysis.Networks {
		ext := joint.Resolve(net, opts.Joint)
		for id, e := range ext {
			res.Extended[id] = e
		}
		nm, err := BuildNetwork(k, net, ext, p.Doors, opts)
		if err != nil {
			res.Problems = append(res.Problems,
				fmt.Sprintf("network %v: %v", net.WallIDs(), err))
			continue
		}
		res.Networks = append(res.Networks, nm)
	}

	for _, d := range p.Doors {
		w := p.Wall(d.WallID)
		if w == nil {
			// Referential integrity problem; surfaced, not fatal.
			res.Problems = append(res.Problems,
				fmt.Sprintf("door %s references missing wall %s", d.ID, d.WallID))
			continue
		}
		mesh, err := BuildDoor(k, d, w)
		if err != nil {
			res.Problems = append(res.Problems,
				fmt.Sprintf("door %s: %v", d.ID, err))
			continue
		}
		res.Doors = append(res.Doors, mesh)
	}

	return res
}

// BuildNetwork assembles one network into a single mesh: wall volumes
// are unioned left to right, then every hosted door's cutter volume is
// subtracted. Intermediate solids are released the moment they are
// superseded. The only fatal outcome is the final meshing step failing.
func BuildNetwork(k kernel.Kernel, net *network.Network, ext map[string]*joint.ExtendedWall, doors []*plan.Door, opts Options) (*NetworkMesh, error) {
	opts = opts.normalized()
	if len(net.Walls) == 0 {
		return nil, fmt.Errorf("empty network")
	}

	result := wallSolid(k, ext[net.Walls[0].ID])
	for _, w := range net.Walls[1:] {
		v := wallSolid(k, ext[w.ID])
		u, err := k.Union(result, v)
		if err != nil {
			// Drop the failed operand, keep the last good solid.
			k.Release(v)
			continue
		}
		k.Release(result)
		k.Release(v)
		result = u
	}

	for _, d := range doors {
		if !net.Contains(d.WallID) {
			continue
		}
		host := hostWall(net, d.WallID)
		c := doorCutter(k, d, host, opts.CutterDepthFactor)
		cut, err := k.Difference(result, c)
		k.Release(c)
		if err != nil {
			continue
		}
		k.Release(result)
		result = cut
	}

	mesh, err := k.ToMesh(result)
	k.Release(result)
	if err != nil {
		return nil, fmt.Errorf("meshing failed: %w", err)
	}

	if net.Merged() {
		mesh.Name = "network:" + net.Walls[0].ID
	} else {
		mesh.Name = net.Walls[0].ID
	}
	return &NetworkMesh{
		Mesh:    mesh,
		WallIDs: net.WallIDs(),
		Merged:  net.Merged(),
	}, nil
}

// wallSolid builds the positioned box volume for one wall from its
// extended endpoints: length x height x thickness, centered on the
// extended segment's midpoint and rotated about the vertical axis only.
func wallSolid(k kernel.Kernel, e *joint.ExtendedWall) kernel.Solid {
	w := e.Wall
	s := k.Box(e.Length(), w.Height, w.Thickness)
	s = k.Rotate(s, 0, e.YawDegrees(), 0)
	mid := e.Midpoint()
	return k.Translate(s, mid.X, mid.Y+w.Height/2, mid.Z)
}

// doorCutter builds the oversized subtraction volume for a door. The
// cutter is positioned on the wall's original centerline at the door's
// authored offset; out-of-range offsets are used as given.
func doorCutter(k kernel.Kernel, d *plan.Door, w *plan.Wall, depthFactor float64) kernel.Solid {
	depth := d.Depth(w) * depthFactor
	s := k.Box(d.Width, d.Height, depth)
	s = k.Rotate(s, 0, w.YawDegrees(), 0)
	p := w.PointAt(d.Offset)
	return k.Translate(s, p.X, p.Y+d.Height/2, p.Z)
}

func hostWall(net *network.Network, wallID string) *plan.Wall {
	for _, w := range net.Walls {
		if w.ID == wallID {
			return w
		}
	}
	return nil
}
