// Package network derives the ephemeral topology of a wall collection:
// connection points where endpoints coincide, the junction kind at each
// point, and the partition of walls into connected networks. Everything
// here is recomputed from scratch on each rebuild.
package network

import (
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/plan"
)

// DefaultCollinearThreshold is how close (radians) the angle between two
// walls must be to pi before they count as a straight continuation
// rather than a corner.
const DefaultCollinearThreshold = 0.1

// ConnectionPoint is a world position where two or more wall endpoints
// coincide within tolerance, with the junction kind resolved.
type ConnectionPoint struct {
	Position geom.Vec3
	Walls    []*plan.Wall // in discovery order
	Kind     plan.JointKind
}

// bucket collects walls whose endpoints fall within tolerance of a seed
// position. It doubles as the r-tree entry for proximity lookups.
type bucket struct {
	seed  geom.Vec3
	tol   float64
	walls []*plan.Wall
}

func (b *bucket) Bounds() rtreego.Rect {
	return rtreego.Point{b.seed.X, b.seed.Z}.ToRect(b.tol)
}

func (b *bucket) has(w *plan.Wall) bool {
	for _, x := range b.walls {
		if x == w {
			return true
		}
	}
	return false
}

// ConnectionPoints scans every wall endpoint and merges endpoints within
// tol of an already-known point into that point's bucket. Buckets are
// indexed in an r-tree so each endpoint only probes its neighborhood.
// Only buckets reached by at least two distinct walls are reported, with
// their junction kind classified.
func ConnectionPoints(walls []*plan.Wall, tol, collinearThreshold float64) []*ConnectionPoint {
	if tol <= 0 {
		tol = plan.DefaultTolerance
	}
	index := rtreego.NewTree(2, 4, 8)
	var buckets []*bucket

	for _, w := range walls {
		for _, p := range []geom.Vec3{w.Start, w.End} {
			b := findBucket(index, p, tol)
			if b == nil {
				b = &bucket{seed: p, tol: tol}
				buckets = append(buckets, b)
				index.Insert(b)
			}
			if !b.has(w) {
				b.walls = append(b.walls, w)
			}
		}
	}

	var points []*ConnectionPoint
	for _, b := range buckets {
		if len(b.walls) < 2 {
			continue
		}
		points = append(points, &ConnectionPoint{
			Position: b.seed,
			Walls:    b.walls,
			Kind:     Classify(b.seed, b.walls, collinearThreshold),
		})
	}
	return points
}

// findBucket returns the first existing bucket whose seed lies within
// tol of p, or nil. The r-tree narrows candidates to the surrounding
// rectangle; the exact planar distance decides.
func findBucket(index *rtreego.Rtree, p geom.Vec3, tol float64) *bucket {
	hits := index.SearchIntersect(rtreego.Point{p.X, p.Z}.ToRect(tol))
	for _, h := range hits {
		b := h.(*bucket)
		if b.seed.Planar().Sub(p.Planar()).Norm() <= tol {
			return b
		}
	}
	return nil
}
