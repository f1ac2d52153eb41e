package network

import (
	"math"
	"testing"

	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/plan"
)

func wall(id string, sx, sz, ex, ez float64) *plan.Wall {
	return &plan.Wall{
		ID:        id,
		Start:     geom.Vec3{X: sx, Z: sz},
		End:       geom.Vec3{X: ex, Z: ez},
		Thickness: 0.2,
		Height:    2.4,
	}
}

func TestConnectionPointsSharedEndpoint(t *testing.T) {
	walls := []*plan.Wall{
		wall("a", 0, 0, 4, 0),
		wall("b", 4, 0, 4, 4),
	}
	points := ConnectionPoints(walls, plan.DefaultTolerance, DefaultCollinearThreshold)
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	cp := points[0]
	if len(cp.Walls) != 2 {
		t.Errorf("point has %d walls, want 2", len(cp.Walls))
	}
	if cp.Kind != plan.JointCorner {
		t.Errorf("kind = %v, want corner", cp.Kind)
	}
}

func TestConnectionPointsTolerance(t *testing.T) {
	t.Run("within tolerance merges", func(t *testing.T) {
		walls := []*plan.Wall{
			wall("a", 0, 0, 4, 0),
			wall("b", 4.005, 0, 4, 4), // 5mm off, inside the 10mm tolerance
		}
		points := ConnectionPoints(walls, 0.01, DefaultCollinearThreshold)
		if len(points) != 1 {
			t.Fatalf("got %d points, want 1", len(points))
		}
	})
	t.Run("outside tolerance stays apart", func(t *testing.T) {
		walls := []*plan.Wall{
			wall("a", 0, 0, 4, 0),
			wall("b", 4.02, 0, 4, 4),
		}
		points := ConnectionPoints(walls, 0.01, DefaultCollinearThreshold)
		if len(points) != 0 {
			t.Fatalf("got %d points, want 0", len(points))
		}
	})
}

// Walls crossing mid-segment share no endpoints and therefore no
// connection point.
func TestConnectionPointsIgnoreMidSegmentCrossing(t *testing.T) {
	walls := []*plan.Wall{
		wall("a", -2, 0, 2, 0),
		wall("b", 0, -2, 0, 2),
	}
	points := ConnectionPoints(walls, plan.DefaultTolerance, DefaultCollinearThreshold)
	if len(points) != 0 {
		t.Fatalf("got %d points, want 0", len(points))
	}
}

func TestClassify(t *testing.T) {
	origin := geom.Vec3{}
	spoke := func(id string, angle float64) *plan.Wall {
		return wall(id, 0, 0, 4*math.Cos(angle), 4*math.Sin(angle))
	}

	tests := []struct {
		name  string
		walls []*plan.Wall
		want  plan.JointKind
	}{
		{"single wall", []*plan.Wall{spoke("a", 0)}, plan.JointNone},
		{"collinear pair", []*plan.Wall{spoke("a", 0), spoke("b", math.Pi)}, plan.JointNone},
		{"nearly collinear pair", []*plan.Wall{spoke("a", 0), spoke("b", math.Pi - 0.05)}, plan.JointNone},
		{"right angle", []*plan.Wall{spoke("a", 0), spoke("b", math.Pi / 2)}, plan.JointCorner},
		{"oblique corner", []*plan.Wall{spoke("a", 0), spoke("b", math.Pi - 0.2)}, plan.JointCorner},
		{"three walls", []*plan.Wall{spoke("a", 0), spoke("b", math.Pi/2), spoke("c", math.Pi)}, plan.JointTee},
		{"four walls", []*plan.Wall{spoke("a", 0), spoke("b", math.Pi/2), spoke("c", math.Pi), spoke("d", -math.Pi/2)}, plan.JointCross},
		{"five walls", []*plan.Wall{spoke("a", 0), spoke("b", 1), spoke("c", 2), spoke("d", 3), spoke("e", 4)}, plan.JointOblique},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(origin, tt.walls, DefaultCollinearThreshold)
			if got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartitionProperties(t *testing.T) {
	// Two components and one singleton.
	walls := []*plan.Wall{
		wall("a", 0, 0, 4, 0),
		wall("b", 4, 0, 4, 4),
		wall("c", 4, 4, 0, 4),
		wall("x", 10, 10, 14, 10),
		wall("y", 14, 10, 14, 14),
		wall("lone", -5, -5, -1, -5),
	}
	a := Analyze(walls, plan.DefaultTolerance, DefaultCollinearThreshold)

	seen := make(map[string]int)
	for _, net := range a.Networks {
		for _, w := range net.Walls {
			seen[w.ID]++
		}
	}
	// Every wall appears exactly once across all networks.
	if len(seen) != len(walls) {
		t.Fatalf("partition covers %d walls, want %d", len(seen), len(walls))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("wall %s appears %d times", id, n)
		}
	}

	if len(a.Networks) != 3 {
		t.Fatalf("got %d networks, want 3", len(a.Networks))
	}

	find := func(id string) *Network {
		for _, net := range a.Networks {
			if net.Contains(id) {
				return net
			}
		}
		return nil
	}
	abc := find("a")
	for _, id := range []string{"b", "c"} {
		if !abc.Contains(id) {
			t.Errorf("wall %s not in a's network", id)
		}
	}
	if abc.Contains("x") || abc.Contains("lone") {
		t.Error("disconnected wall grouped with a")
	}
	if lone := find("lone"); lone.Merged() || len(lone.Walls) != 1 {
		t.Errorf("singleton network wrong: %v", lone.WallIDs())
	}
}

// A chain of walls is one network even though the first and last walls
// share no endpoint directly.
func TestPartitionTransitive(t *testing.T) {
	var walls []*plan.Wall
	for i := 0; i < 50; i++ {
		walls = append(walls, wall(
			string(rune('A'+i%26))+string(rune('a'+i/26)),
			float64(i), 0, float64(i+1), 0,
		))
	}
	a := Analyze(walls, plan.DefaultTolerance, DefaultCollinearThreshold)
	if len(a.Networks) != 1 {
		t.Fatalf("got %d networks, want 1", len(a.Networks))
	}
	if len(a.Networks[0].Walls) != 50 {
		t.Errorf("network has %d walls, want 50", len(a.Networks[0].Walls))
	}
}

// Collinear continuations form no corner but still one network.
func TestCollinearWallsShareNetwork(t *testing.T) {
	walls := []*plan.Wall{
		wall("a", 0, 0, 3, 0),
		wall("b", 3, 0, 6, 0),
	}
	a := Analyze(walls, plan.DefaultTolerance, DefaultCollinearThreshold)
	if len(a.Networks) != 1 {
		t.Fatalf("got %d networks, want 1", len(a.Networks))
	}
	if len(a.Points) != 1 || a.Points[0].Kind != plan.JointNone {
		t.Fatalf("expected one pass-through point, got %+v", a.Points)
	}
}

func TestAnnotateConnections(t *testing.T) {
	walls := []*plan.Wall{
		wall("a", 0, 0, 4, 0),
		wall("b", 4, 0, 4, 4),
	}
	Analyze(walls, plan.DefaultTolerance, DefaultCollinearThreshold)

	a := walls[0]
	if len(a.Connections) != 1 {
		t.Fatalf("wall a has %d connections, want 1", len(a.Connections))
	}
	c := a.Connections[0]
	if c.Neighbor != "b" || c.Kind != plan.JointCorner || c.End != plan.EndEnd {
		t.Errorf("connection = %+v", c)
	}

	b := walls[1]
	if len(b.Connections) != 1 || b.Connections[0].End != plan.EndStart {
		t.Errorf("wall b connections = %+v", b.Connections)
	}
}

// Connections are derived state: re-analyzing must replace, not append.
func TestAnnotateIsIdempotent(t *testing.T) {
	walls := []*plan.Wall{
		wall("a", 0, 0, 4, 0),
		wall("b", 4, 0, 4, 4),
	}
	Analyze(walls, plan.DefaultTolerance, DefaultCollinearThreshold)
	Analyze(walls, plan.DefaultTolerance, DefaultCollinearThreshold)
	if len(walls[0].Connections) != 1 {
		t.Errorf("connections accumulated: %+v", walls[0].Connections)
	}
}

// Networks assemble in deterministic order regardless of adjacency
// discovery order.
func TestPartitionOrderStable(t *testing.T) {
	walls := []*plan.Wall{
		wall("c", 4, 4, 0, 4),
		wall("a", 0, 0, 4, 0),
		wall("b", 4, 0, 4, 4),
	}
	a := Analyze(walls, plan.DefaultTolerance, DefaultCollinearThreshold)
	if len(a.Networks) != 1 {
		t.Fatalf("got %d networks, want 1", len(a.Networks))
	}
	got := a.Networks[0].WallIDs()
	want := []string{"c", "a", "b"} // input order preserved
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("network order = %v, want %v", got, want)
		}
	}
}
