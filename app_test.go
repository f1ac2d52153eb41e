package main

import (
	"testing"

	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/kernel"
)

// stubSolid and stubKernel let App tests run without the real geometry
// backends; every solid meshes to a single triangle.
type stubSolid struct{}

func (stubSolid) BoundingBox() (min, max [3]float64) { return }

type stubKernel struct{}

func (stubKernel) Box(x, y, z float64) kernel.Solid                       { return stubSolid{} }
func (stubKernel) Cylinder(h, r float64, segments int) kernel.Solid       { return stubSolid{} }
func (stubKernel) Union(a, b kernel.Solid) (kernel.Solid, error)          { return stubSolid{}, nil }
func (stubKernel) Difference(a, b kernel.Solid) (kernel.Solid, error)     { return stubSolid{}, nil }
func (stubKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error)   { return stubSolid{}, nil }
func (stubKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }
func (stubKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid    { return s }
func (stubKernel) Release(s kernel.Solid)                                 {}
func (stubKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}, nil
}

func testApp() *App {
	return newAppWithKernel(DefaultConfig(), stubKernel{})
}

func TestAppAddWallAndRebuild(t *testing.T) {
	a := testApp()
	id, err := a.AddWall(WallInput{
		ID:    "w1",
		Start: geom.Vec3{},
		End:   geom.Vec3{X: 4},
	})
	if err != nil {
		t.Fatalf("AddWall: %v", err)
	}
	if id != "w1" {
		t.Errorf("id = %q, want w1", id)
	}

	res := a.Rebuild()
	if len(res.Meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(res.Meshes))
	}
	m := res.Meshes[0]
	if m.Name != "w1" || m.Merged {
		t.Errorf("mesh = %+v", m)
	}
	if m.Color == "" {
		t.Error("mesh has no color assigned")
	}
	if len(res.Extents) != 1 || res.Extents[0].WallID != "w1" {
		t.Errorf("extents = %+v", res.Extents)
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues on a clean plan: %+v", res.Issues)
	}
}

func TestAppAddDoor(t *testing.T) {
	a := testApp()
	a.AddWall(WallInput{ID: "w1", End: geom.Vec3{X: 4}})

	if _, err := a.AddDoor(DoorInput{WallID: "w1", Offset: 2, Width: 0.9, Height: 2.1}); err != nil {
		t.Fatalf("AddDoor: %v", err)
	}
	if _, err := a.AddDoor(DoorInput{WallID: "ghost"}); err == nil {
		t.Error("expected error for unknown parent wall")
	}

	res := a.Rebuild()
	if len(res.Doors) != 1 {
		t.Errorf("got %d door meshes, want 1", len(res.Doors))
	}
}

func TestAppRemove(t *testing.T) {
	a := testApp()
	a.AddWall(WallInput{ID: "w1", End: geom.Vec3{X: 4}})
	did, _ := a.AddDoor(DoorInput{WallID: "w1", Offset: 2, Width: 0.9, Height: 2.1})

	if !a.RemoveDoor(did) {
		t.Error("RemoveDoor returned false")
	}
	if a.RemoveDoor(did) {
		t.Error("second RemoveDoor returned true")
	}
	if !a.RemoveWall("w1") {
		t.Error("RemoveWall returned false")
	}

	res := a.Rebuild()
	if len(res.Meshes) != 0 || len(res.Doors) != 0 {
		t.Errorf("rebuild after removal = %+v", res)
	}
}

func TestAppEvaluateScript(t *testing.T) {
	a := testApp()
	res := a.Evaluate(`
		(wall "w1" (vec3 0 0 0) (vec3 4 0 0))
		(door :wall "w1" :offset 2 :width 0.9 :height 2.1)
	`)
	if len(res.Errors) != 0 {
		t.Fatalf("script errors: %+v", res.Errors)
	}
	if len(res.Meshes) != 1 || len(res.Doors) != 1 {
		t.Errorf("got %d meshes, %d doors", len(res.Meshes), len(res.Doors))
	}
}

// A script that fails to evaluate reports errors and leaves the current
// plan untouched.
func TestAppEvaluateScriptError(t *testing.T) {
	a := testApp()
	a.AddWall(WallInput{ID: "keep", End: geom.Vec3{X: 4}})

	res := a.Evaluate(`(door :wall "ghost")`)
	if len(res.Errors) == 0 {
		t.Fatal("expected script errors")
	}
	if len(res.Meshes) != 0 {
		t.Error("failed evaluate still returned meshes")
	}

	after := a.Rebuild()
	if len(after.Meshes) != 1 || after.Meshes[0].Name != "keep" {
		t.Errorf("plan changed by failed evaluate: %+v", after.Meshes)
	}
}

func TestAppSetJoinStrategy(t *testing.T) {
	a := testApp()
	if err := a.SetJoinStrategy("butt"); err != nil {
		t.Fatalf("SetJoinStrategy: %v", err)
	}
	if err := a.SetJoinStrategy("bevel"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestAppValidationIssuesSurface(t *testing.T) {
	a := testApp()
	a.AddWall(WallInput{ID: "short", End: geom.Vec3{X: 3}})
	a.AddDoor(DoorInput{WallID: "short", Offset: 10, Width: 0.9, Height: 2.1})

	res := a.Rebuild()
	if len(res.Issues) == 0 {
		t.Fatal("expected an out-of-range offset warning")
	}
	if res.Issues[0].Severity != "warning" {
		t.Errorf("severity = %q, want warning", res.Issues[0].Severity)
	}
	// The door still builds at the authored offset.
	if len(res.Doors) != 1 {
		t.Errorf("got %d door meshes, want 1", len(res.Doors))
	}
}
