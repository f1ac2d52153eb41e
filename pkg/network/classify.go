package network

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/plan"
)

// Classify determines the junction kind at point p given the walls that
// touch it. The kind is a pure function of wall count and, for the
// two-wall case, of the angle between the walls.
func Classify(p geom.Vec3, walls []*plan.Wall, collinearThreshold float64) plan.JointKind {
	if collinearThreshold <= 0 {
		collinearThreshold = DefaultCollinearThreshold
	}
	switch len(walls) {
	case 0, 1:
		return plan.JointNone
	case 2:
		a := directionAway(walls[0], p)
		b := directionAway(walls[1], p)
		angle := geom.AngleBetween(a, b)
		// Two walls continuing straight through each other: the
		// directions away from the point are opposite, angle ~ pi.
		if math.Abs(math.Pi-angle) < collinearThreshold {
			return plan.JointNone
		}
		return plan.JointCorner
	case 3:
		return plan.JointTee
	case 4:
		return plan.JointCross
	default:
		return plan.JointOblique
	}
}

// directionAway returns the planar unit vector pointing from the wall's
// endpoint at p toward its far endpoint, i.e. away from the junction
// into the wall body.
func directionAway(w *plan.Wall, p geom.Vec3) r2.Point {
	if w.EndNear(p) == plan.EndStart {
		return geom.Direction(w.Start, w.End)
	}
	return geom.Direction(w.End, w.Start)
}
