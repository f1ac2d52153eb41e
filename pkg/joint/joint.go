// Package joint computes extended wall-endpoint geometry so that the
// boolean union of a network's wall volumes merges cleanly at every
// junction. Butt joints retract trimmed walls along their own axis;
// miter joints extend both walls past a two-wall corner. All output is
// derived from the original authored endpoints, so resolving the same
// input twice yields identical geometry.
package joint

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/network"
	"github.com/chazu/lath/pkg/plan"
)

// DefaultMiterLimit is the smallest sin(miter angle) the miter method
// accepts before falling back to butt. Below it the tangent in the
// extension formula blows up.
const DefaultMiterLimit = 0.1

// Options configures a resolve pass.
type Options struct {
	Strategy      plan.JoinStrategy
	OverlapMargin float64 // extra extension so unioned volumes overlap
	MiterLimit    float64 // sin(miter) below which miter falls back to butt
	Tolerance     float64 // endpoint matching tolerance
}

// DefaultOptions returns the standard resolver settings.
func DefaultOptions() Options {
	return Options{
		Strategy:      plan.StrategyAutomatic,
		OverlapMargin: plan.DefaultOverlapMargin,
		MiterLimit:    DefaultMiterLimit,
		Tolerance:     plan.DefaultTolerance,
	}
}

func (o Options) normalized() Options {
	if o.OverlapMargin == 0 {
		o.OverlapMargin = plan.DefaultOverlapMargin
	}
	if o.MiterLimit <= 0 {
		o.MiterLimit = DefaultMiterLimit
	}
	if o.Tolerance <= 0 {
		o.Tolerance = plan.DefaultTolerance
	}
	return o
}

// ExtendedWall is a wall's endpoint geometry after junction resolution.
// Start and End begin as copies of the wall's authored endpoints; each
// junction the wall touches may replace the endpoint on its side.
type ExtendedWall struct {
	Wall     *plan.Wall
	Start    geom.Vec3
	End      geom.Vec3
	Extended bool // true if either endpoint was altered
}

// OriginalStart returns the authored start point.
func (e *ExtendedWall) OriginalStart() geom.Vec3 { return e.Wall.Start }

// OriginalEnd returns the authored end point.
func (e *ExtendedWall) OriginalEnd() geom.Vec3 { return e.Wall.End }

// Length returns the planar length of the extended segment.
func (e *ExtendedWall) Length() float64 {
	return e.End.Planar().Sub(e.Start.Planar()).Norm()
}

// Midpoint returns the midpoint of the extended segment.
func (e *ExtendedWall) Midpoint() geom.Vec3 {
	return geom.Midpoint(e.Start, e.End)
}

// YawDegrees returns the extended segment's rotation about the vertical
// axis.
func (e *ExtendedWall) YawDegrees() float64 {
	return geom.YawDegrees(geom.Direction(e.Start, e.End))
}

// setEnd replaces one endpoint and marks the record extended.
func (e *ExtendedWall) setEnd(end plan.WallEnd, p geom.Vec3) {
	if end == plan.EndStart {
		e.Start = p
	} else {
		e.End = p
	}
	e.Extended = true
}

// Resolve computes extended geometry for every wall in the network. A
// wall touching two junctions accumulates one endpoint adjustment from
// each; a wall touching none keeps its authored endpoints.
func Resolve(net *network.Network, opts Options) map[string]*ExtendedWall {
	opts = opts.normalized()

	ext := make(map[string]*ExtendedWall, len(net.Walls))
	for _, w := range net.Walls {
		ext[w.ID] = &ExtendedWall{Wall: w, Start: w.Start, End: w.End}
	}

	for _, cp := range net.Points {
		if cp.Kind == plan.JointNone {
			continue
		}
		switch method(opts.Strategy, cp) {
		case plan.StrategyMiter:
			applyMiter(cp, ext, opts)
		default:
			applyButt(cp, ext, opts)
		}
	}

	return ext
}

// method maps the configured strategy and the junction to butt or miter.
// Automatic miters two-wall corners and butts everything else. An
// explicit miter strategy still only applies where exactly two walls
// meet; the miter construction is undefined for more.
func method(s plan.JoinStrategy, cp *network.ConnectionPoint) plan.JoinStrategy {
	switch s {
	case plan.StrategyButt:
		return plan.StrategyButt
	case plan.StrategyMiter:
		if len(cp.Walls) == 2 {
			return plan.StrategyMiter
		}
		return plan.StrategyButt
	default:
		if cp.Kind == plan.JointCorner {
			return plan.StrategyMiter
		}
		return plan.StrategyButt
	}
}

// applyButt designates the longest wall at the junction as the through
// wall and leaves it untouched. Every other wall is retracted along its
// own axis, toward its far endpoint, by half the through wall's
// thickness plus the overlap margin.
func applyButt(cp *network.ConnectionPoint, ext map[string]*ExtendedWall, opts Options) {
	through := cp.Walls[0]
	for _, w := range cp.Walls[1:] {
		if w.Length() > through.Length() {
			through = w
		}
	}

	retreat := through.Thickness/2 + opts.OverlapMargin
	for _, w := range cp.Walls {
		if w == through {
			continue
		}
		end := w.EndNear(cp.Position)
		away := directionAway(w, end)
		p := w.EndPoint(end).Add(geom.FromPlanar(away.Mul(retreat), 0))
		ext[w.ID].setEnd(end, p)
	}
}

// applyMiter extends both walls of a two-wall corner outward past the
// junction so their volumes meet at the mitred seam. Near-straight
// corners (sin of the miter angle below the limit) fall back to butt to
// avoid the tangent blowing up.
func applyMiter(cp *network.ConnectionPoint, ext map[string]*ExtendedWall, opts Options) {
	a, b := cp.Walls[0], cp.Walls[1]
	endA := a.EndNear(cp.Position)
	endB := b.EndNear(cp.Position)

	angle := geom.AngleBetween(directionAway(a, endA), directionAway(b, endB))
	miter := angle / 2
	if math.Sin(miter) < opts.MiterLimit {
		applyButt(cp, ext, opts)
		return
	}

	for _, it := range []struct {
		w   *plan.Wall
		end plan.WallEnd
	}{{a, endA}, {b, endB}} {
		reach := it.w.Thickness/2/math.Tan(miter) + opts.OverlapMargin
		away := directionAway(it.w, it.end)
		p := it.w.EndPoint(it.end).Add(geom.FromPlanar(away.Mul(-reach), 0))
		ext[it.w.ID].setEnd(it.end, p)
	}
}

// directionAway is the planar unit vector from the given endpoint toward
// the wall's far endpoint.
func directionAway(w *plan.Wall, end plan.WallEnd) r2.Point {
	if end == plan.EndStart {
		return geom.Direction(w.Start, w.End)
	}
	return geom.Direction(w.End, w.Start)
}
