// Package plan defines the persistent building-model data: walls, the
// doors they host, and model-wide defaults. Everything else in the
// pipeline (connection points, networks, extended geometry) is derived
// from a Plan on each rebuild and never stored here.
package plan

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/chazu/lath/pkg/geom"
)

// Tolerances and fallback dimensions shared across the pipeline.
const (
	// DefaultTolerance is the distance within which two wall endpoints
	// are treated as touching.
	DefaultTolerance = 0.01
	// DefaultOverlapMargin is added to every junction extension so
	// unioned volumes overlap instead of meeting at a zero-area seam.
	DefaultOverlapMargin = 0.01
	// MinWallLength is the shortest wall the validator accepts.
	MinWallLength = 0.05

	// DefaultWallThickness and DefaultWallHeight apply to walls created
	// without explicit dimensions (DSL, UI quick-draw).
	DefaultWallThickness = 0.2
	DefaultWallHeight    = 2.4
)

// Connection records one neighbor relationship of a wall, rebuilt from
// scratch by the topology analysis on every pipeline run.
type Connection struct {
	Neighbor string    `json:"neighbor"` // neighbor wall id
	Kind     JointKind `json:"kind"`
	End      WallEnd   `json:"end"` // which of this wall's endpoints touches
}

// Wall is a straight wall segment. Start and End sit at floor height;
// the wall body extends Height upward and Thickness across.
type Wall struct {
	ID        string    `json:"id"`
	Start     geom.Vec3 `json:"start"`
	End       geom.Vec3 `json:"end"`
	Thickness float64   `json:"thickness"`
	Height    float64   `json:"height"`

	Doors       []string     `json:"doors,omitempty"`       // hosted door ids
	Connections []Connection `json:"connections,omitempty"` // derived, see Connection
}

// Length returns the planar distance between the wall's endpoints.
func (w *Wall) Length() float64 {
	return w.End.Planar().Sub(w.Start.Planar()).Norm()
}

// Direction returns the planar unit vector from Start to End.
func (w *Wall) Direction() r2.Point {
	return geom.Direction(w.Start, w.End)
}

// YawDegrees returns the wall's rotation about the vertical axis.
func (w *Wall) YawDegrees() float64 {
	return geom.YawDegrees(w.Direction())
}

// EndPoint returns the position of the given endpoint.
func (w *Wall) EndPoint(e WallEnd) geom.Vec3 {
	if e == EndStart {
		return w.Start
	}
	return w.End
}

// PointAt returns the point at the given distance from Start along the
// wall's original (unextended) centerline. Out-of-range offsets are used
// as given; range checking belongs to the validator.
func (w *Wall) PointAt(offset float64) geom.Vec3 {
	d := w.Direction()
	return w.Start.Add(geom.FromPlanar(d.Mul(offset), 0))
}

// EndNear returns whichever endpoint lies closer to p in plan view.
func (w *Wall) EndNear(p geom.Vec3) WallEnd {
	ds := w.Start.Planar().Sub(p.Planar()).Norm()
	de := w.End.Planar().Sub(p.Planar()).Norm()
	if ds <= de {
		return EndStart
	}
	return EndEnd
}

// Door is an opening hosted by exactly one wall. Offset is the distance
// from the wall's original start to the door center, measured before any
// junction-driven endpoint extension.
type Door struct {
	ID     string  `json:"id"`
	WallID string  `json:"wall_id"`
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Depth returns the door's depth, which is always the hosting wall's
// thickness.
func (d *Door) Depth(w *Wall) float64 {
	return w.Thickness
}

// Defaults holds model-wide settings applied by the pipeline.
type Defaults struct {
	Strategy      JoinStrategy `json:"strategy"`
	Tolerance     float64      `json:"tolerance"`
	OverlapMargin float64      `json:"overlap_margin"`
}

// Plan is the complete persistent model: the wall and door collections
// plus defaults. The surrounding application owns the Plan; the pipeline
// only ever reads a snapshot of it.
type Plan struct {
	Walls    []*Wall  `json:"walls"`
	Doors    []*Door  `json:"doors"`
	Defaults Defaults `json:"defaults"`

	wallIndex map[string]*Wall
	doorIndex map[string]*Door
}

// New creates an empty Plan with default settings.
func New() *Plan {
	return &Plan{
		Defaults: Defaults{
			Strategy:      StrategyAutomatic,
			Tolerance:     DefaultTolerance,
			OverlapMargin: DefaultOverlapMargin,
		},
		wallIndex: make(map[string]*Wall),
		doorIndex: make(map[string]*Door),
	}
}

// AddWall adds a wall to the plan. A wall without an id gets a generated
// one. The assigned id is returned.
func (p *Plan) AddWall(w *Wall) (string, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if _, exists := p.wallIndex[w.ID]; exists {
		return "", fmt.Errorf("wall id %q already in use", w.ID)
	}
	if w.Thickness == 0 {
		w.Thickness = DefaultWallThickness
	}
	if w.Height == 0 {
		w.Height = DefaultWallHeight
	}
	p.Walls = append(p.Walls, w)
	p.wallIndex[w.ID] = w
	return w.ID, nil
}

// AddDoor adds a door to the plan and registers it on its parent wall.
// The parent wall must already exist.
func (p *Plan) AddDoor(d *Door) (string, error) {
	w, ok := p.wallIndex[d.WallID]
	if !ok {
		return "", fmt.Errorf("door references unknown wall %q", d.WallID)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if _, exists := p.doorIndex[d.ID]; exists {
		return "", fmt.Errorf("door id %q already in use", d.ID)
	}
	p.Doors = append(p.Doors, d)
	p.doorIndex[d.ID] = d
	w.Doors = append(w.Doors, d.ID)
	return d.ID, nil
}

// RemoveWall deletes a wall and every door it hosts. Reports whether the
// wall existed.
func (p *Plan) RemoveWall(id string) bool {
	w, ok := p.wallIndex[id]
	if !ok {
		return false
	}
	for _, did := range w.Doors {
		p.removeDoorOnly(did)
	}
	delete(p.wallIndex, id)
	p.Walls = removeByID(p.Walls, func(w *Wall) string { return w.ID }, id)
	return true
}

// RemoveDoor deletes a door and unregisters it from its parent wall.
// Reports whether the door existed.
func (p *Plan) RemoveDoor(id string) bool {
	d, ok := p.doorIndex[id]
	if !ok {
		return false
	}
	if w := p.wallIndex[d.WallID]; w != nil {
		w.Doors = removeString(w.Doors, id)
	}
	p.removeDoorOnly(id)
	return true
}

func (p *Plan) removeDoorOnly(id string) {
	if _, ok := p.doorIndex[id]; !ok {
		return
	}
	delete(p.doorIndex, id)
	p.Doors = removeByID(p.Doors, func(d *Door) string { return d.ID }, id)
}

// Wall returns the wall with the given id, or nil.
func (p *Plan) Wall(id string) *Wall {
	return p.wallIndex[id]
}

// Door returns the door with the given id, or nil.
func (p *Plan) Door(id string) *Door {
	return p.doorIndex[id]
}

// DoorsOn returns the doors hosted by the given wall, in insertion order.
func (p *Plan) DoorsOn(wallID string) []*Door {
	var doors []*Door
	for _, d := range p.Doors {
		if d.WallID == wallID {
			doors = append(doors, d)
		}
	}
	return doors
}

// Reindex rebuilds the internal id indexes. Needed after a Plan is
// populated by direct field assignment (JSON decoding, tests).
func (p *Plan) Reindex() {
	p.wallIndex = make(map[string]*Wall, len(p.Walls))
	for _, w := range p.Walls {
		p.wallIndex[w.ID] = w
	}
	p.doorIndex = make(map[string]*Door, len(p.Doors))
	for _, d := range p.Doors {
		p.doorIndex[d.ID] = d
	}
}

func removeByID[T any](s []T, id func(T) string, target string) []T {
	out := s[:0]
	for _, v := range s {
		if id(v) != target {
			out = append(out, v)
		}
	}
	return out
}

func removeString(s []string, target string) []string {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
