package joint

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/network"
	"github.com/chazu/lath/pkg/plan"
)

const eps = 1e-9

func wall(id string, sx, sz, ex, ez, thickness float64) *plan.Wall {
	return &plan.Wall{
		ID:        id,
		Start:     geom.Vec3{X: sx, Z: sz},
		End:       geom.Vec3{X: ex, Z: ez},
		Thickness: thickness,
		Height:    2.4,
	}
}

func analyze(t *testing.T, walls ...*plan.Wall) *network.Network {
	t.Helper()
	a := network.Analyze(walls, plan.DefaultTolerance, network.DefaultCollinearThreshold)
	if len(a.Networks) != 1 {
		t.Fatalf("expected one network, got %d", len(a.Networks))
	}
	return a.Networks[0]
}

func near(t *testing.T, name string, got, want geom.Vec3) {
	t.Helper()
	if got.Distance(want) > eps {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// Collinear continuations need no joint work at all.
func TestResolveCollinearLeavesWallsAlone(t *testing.T) {
	a := wall("a", 0, 0, 3, 0, 0.2)
	b := wall("b", 3, 0, 6, 0, 0.2)
	net := analyze(t, a, b)

	ext := Resolve(net, DefaultOptions())
	for _, id := range []string{"a", "b"} {
		e := ext[id]
		if e.Extended {
			t.Errorf("wall %s marked extended", id)
		}
		near(t, id+".Start", e.Start, e.Wall.Start)
		near(t, id+".End", e.End, e.Wall.End)
	}
}

// A right-angle corner with 0.375 thick walls miters both walls outward
// by 0.1875/tan(45 deg) plus the 0.01 margin.
func TestResolveMiterRightAngle(t *testing.T) {
	a := wall("a", 0, 0, 4, 0, 0.375)
	b := wall("b", 4, 0, 4, 4, 0.375)
	net := analyze(t, a, b)

	ext := Resolve(net, DefaultOptions())

	near(t, "a.Start", ext["a"].Start, geom.Vec3{})
	near(t, "a.End", ext["a"].End, geom.Vec3{X: 4.1975})
	near(t, "b.Start", ext["b"].Start, geom.Vec3{X: 4, Z: -0.1975})
	near(t, "b.End", ext["b"].End, geom.Vec3{X: 4, Z: 4})
	if !ext["a"].Extended || !ext["b"].Extended {
		t.Error("corner walls not marked extended")
	}
}

// At a T junction the longest wall passes through untouched and the rest
// retract by half its thickness plus the margin. Equal lengths break the
// tie in favor of the earlier wall.
func TestResolveButtTee(t *testing.T) {
	t1 := wall("t1", -3, 0, 0, 0, 0.3)
	t2 := wall("t2", 0, 0, 3, 0, 0.3)
	b := wall("b", 0, 0, 0, 2, 0.3)
	net := analyze(t, t1, t2, b)

	ext := Resolve(net, DefaultOptions())

	if ext["t1"].Extended {
		t.Error("through wall was modified")
	}
	near(t, "t1.End", ext["t1"].End, geom.Vec3{})

	// retreat = 0.3/2 + 0.01
	near(t, "t2.Start", ext["t2"].Start, geom.Vec3{X: 0.16})
	near(t, "b.Start", ext["b"].Start, geom.Vec3{Z: 0.16})
	near(t, "b.End", ext["b"].End, geom.Vec3{Z: 2})
}

func TestResolveButtPicksLongestThrough(t *testing.T) {
	t1 := wall("t1", -2, 0, 0, 0, 0.3)
	t2 := wall("t2", 0, 0, 3, 0, 0.3)
	b := wall("b", 0, 0, 0, 1, 0.3)
	net := analyze(t, t1, t2, b)

	ext := Resolve(net, DefaultOptions())

	if ext["t2"].Extended {
		t.Error("longest wall was modified")
	}
	if !ext["t1"].Extended || !ext["b"].Extended {
		t.Error("trimmed walls not marked extended")
	}
	near(t, "t1.End", ext["t1"].End, geom.Vec3{X: -0.16})
}

// A nearly straight corner would need an enormous miter extension, so
// the resolver falls back to a butt joint there.
func TestResolveMiterSharpAngleFallsBack(t *testing.T) {
	const angle = 0.15 // sin(angle/2) ~ 0.0749, under the 0.1 limit
	a := wall("a", 4, 0, 0, 0, 0.2)
	b := wall("b", 0, 0, 4*math.Cos(angle), 4*math.Sin(angle), 0.2)
	net := analyze(t, a, b)

	ext := Resolve(net, DefaultOptions())

	// Butt behavior: one wall through, the other retracted inward.
	if ext["a"].Extended {
		t.Error("through wall was modified")
	}
	e := ext["b"]
	if !e.Extended {
		t.Fatal("expected b to be trimmed")
	}
	retreat := 0.2/2 + plan.DefaultOverlapMargin
	want := geom.Vec3{X: retreat * math.Cos(angle), Z: retreat * math.Sin(angle)}
	near(t, "b.Start", e.Start, want)
}

// An explicit miter strategy only applies where exactly two walls meet;
// junctions with more walls still get butt joints.
func TestResolveExplicitMiterOnTeeUsesButt(t *testing.T) {
	t1 := wall("t1", -3, 0, 0, 0, 0.3)
	t2 := wall("t2", 0, 0, 3, 0, 0.3)
	b := wall("b", 0, 0, 0, 2, 0.3)
	net := analyze(t, t1, t2, b)

	opts := DefaultOptions()
	opts.Strategy = plan.StrategyMiter
	ext := Resolve(net, opts)

	if ext["t1"].Extended {
		t.Error("through wall was modified")
	}
	near(t, "b.Start", ext["b"].Start, geom.Vec3{Z: 0.16})
}

// An explicit butt strategy overrides the automatic miter at corners.
func TestResolveExplicitButtAtCorner(t *testing.T) {
	a := wall("a", 0, 0, 4, 0, 0.2)
	b := wall("b", 4, 0, 4, 2, 0.2)
	net := analyze(t, a, b)

	opts := DefaultOptions()
	opts.Strategy = plan.StrategyButt
	ext := Resolve(net, opts)

	if ext["a"].Extended {
		t.Error("longer wall was modified")
	}
	// b retracts by a.Thickness/2 + margin along its own axis.
	near(t, "b.Start", ext["b"].Start, geom.Vec3{X: 4, Z: 0.11})
}

// A wall spanning two corners accumulates an adjustment at each end.
func TestResolveBothEndsAdjusted(t *testing.T) {
	left := wall("left", 0, 0, 0, 4, 0.2)
	bottom := wall("bottom", 0, 0, 4, 0, 0.2)
	right := wall("right", 4, 0, 4, 4, 0.2)
	net := analyze(t, left, bottom, right)

	ext := Resolve(net, DefaultOptions())

	// reach = 0.1/tan(45 deg) + 0.01 at each corner.
	e := ext["bottom"]
	near(t, "bottom.Start", e.Start, geom.Vec3{X: -0.11})
	near(t, "bottom.End", e.End, geom.Vec3{X: 4.11})
	if got := e.Length(); math.Abs(got-4.22) > eps {
		t.Errorf("extended length = %v, want 4.22", got)
	}
	near(t, "bottom midpoint", e.Midpoint(), geom.Vec3{X: 2})
}

// Resolution is a pure function of the authored endpoints: running it
// again yields byte-identical geometry, never compounding extensions.
func TestResolveIsIdempotent(t *testing.T) {
	a := wall("a", 0, 0, 4, 0, 0.375)
	b := wall("b", 4, 0, 4, 4, 0.375)
	net := analyze(t, a, b)

	first := Resolve(net, DefaultOptions())
	second := Resolve(net, DefaultOptions())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated resolve differs (-first +second):\n%s", diff)
	}
	near(t, "a original start", first["a"].OriginalStart(), geom.Vec3{})
	near(t, "a original end", first["a"].OriginalEnd(), geom.Vec3{X: 4})
}

// Five walls fanning out of one point form an oblique junction and fall
// back to butt resolution against the longest spoke.
func TestResolveObliqueFan(t *testing.T) {
	var walls []*plan.Wall
	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		ang := float64(i) * 2 * math.Pi / 5
		length := 3.0
		if id == "c" {
			length = 5 // the designated through wall
		}
		walls = append(walls, wall(id, 0, 0, length*math.Cos(ang), length*math.Sin(ang), 0.2))
	}
	net := analyze(t, walls...)

	if net.Points[0].Kind != plan.JointOblique {
		t.Fatalf("junction kind = %v, want oblique", net.Points[0].Kind)
	}

	ext := Resolve(net, DefaultOptions())
	if ext["c"].Extended {
		t.Error("through wall was modified")
	}
	for _, id := range ids {
		if id == "c" {
			continue
		}
		e := ext[id]
		if !e.Extended {
			t.Errorf("spoke %s not trimmed", id)
		}
		// Each spoke keeps its far endpoint and shortens by
		// 0.1 + 0.01 at the hub.
		if got := e.Length(); math.Abs(got-(3-0.11)) > eps {
			t.Errorf("spoke %s length = %v, want %v", id, got, 3-0.11)
		}
	}
}

func TestExtendedWallYaw(t *testing.T) {
	w := wall("w", 0, 0, 0, 3, 0.2)
	e := &ExtendedWall{Wall: w, Start: w.Start, End: w.End}
	if got := e.YawDegrees(); math.Abs(got-(-90)) > eps {
		t.Errorf("YawDegrees = %v, want -90", got)
	}
}
