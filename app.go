package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/lath/pkg/assemble"
	"github.com/chazu/lath/pkg/engine"
	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/joint"
	"github.com/chazu/lath/pkg/kernel"
	"github.com/chazu/lath/pkg/kernel/manifold"
	"github.com/chazu/lath/pkg/kernel/sdfx"
	"github.com/chazu/lath/pkg/plan"
)

// colorPalette is a default palette used to assign distinct colors to
// wall networks.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It owns the plan and serializes all rebuilds;
// the pipeline itself never runs concurrently with itself.
type App struct {
	ctx    context.Context
	cfg    Config
	engine *engine.Engine
	kernel kernel.Kernel

	mu      sync.Mutex
	plan    *plan.Plan
	rebuild func(f func()) // debounced scheduler for edit-triggered rebuilds
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices  []float32            `json:"vertices"`
	Normals   []float32            `json:"normals"`
	Indices   []uint32             `json:"indices"`
	Name      string               `json:"name"`
	Color     string               `json:"color"`
	WallIDs   []string             `json:"wallIds,omitempty"`
	Merged    bool                 `json:"merged"`
	Materials []kernel.MaterialRun `json:"materials,omitempty"`
}

// ExtentData reports a wall's trimmed endpoints for highlight boxes.
type ExtentData struct {
	WallID        string    `json:"wallId"`
	Start         geom.Vec3 `json:"start"`
	End           geom.Vec3 `json:"end"`
	OriginalStart geom.Vec3 `json:"originalStart"`
	OriginalEnd   geom.Vec3 `json:"originalEnd"`
	Extended      bool      `json:"extended"`
}

// IssueData is a JSON-serializable validation finding.
type IssueData struct {
	WallID   string `json:"wallId,omitempty"`
	DoorID   string `json:"doorId,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// EvalErrorData is a JSON-serializable script error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// RebuildResult is the full output of a rebuild, sent to the frontend.
type RebuildResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Doors    []MeshData      `json:"doors"`
	Extents  []ExtentData    `json:"extents"`
	Issues   []IssueData     `json:"issues"`
	Errors   []EvalErrorData `json:"errors"`
	Problems []string        `json:"problems"`
}

// WallInput is the frontend's wall creation payload.
type WallInput struct {
	ID        string    `json:"id"`
	Start     geom.Vec3 `json:"start"`
	End       geom.Vec3 `json:"end"`
	Thickness float64   `json:"thickness"`
	Height    float64   `json:"height"`
}

// DoorInput is the frontend's door creation payload.
type DoorInput struct {
	ID     string  `json:"id"`
	WallID string  `json:"wallId"`
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewApp creates a new App with the configured kernel backend.
func NewApp(cfg Config) *App {
	return newAppWithKernel(cfg, pickKernel(cfg))
}

// newAppWithKernel exists so tests can inject a fake kernel.
func newAppWithKernel(cfg Config, k kernel.Kernel) *App {
	delay := time.Duration(cfg.RebuildDelayMillis) * time.Millisecond
	return &App{
		cfg:     cfg,
		engine:  engine.NewEngine(),
		kernel:  k,
		plan:    planWithDefaults(cfg),
		rebuild: debounce.New(delay),
	}
}

// pickKernel selects the geometry backend from config, falling back to
// sdfx when manifold is unavailable in this build.
func pickKernel(cfg Config) kernel.Kernel {
	if cfg.Kernel == "manifold" {
		k, err := manifold.New()
		if err == nil {
			return k
		}
		log.Printf("manifold kernel unavailable (%v), falling back to sdfx", err)
	}
	return sdfx.NewWithResolution(cfg.MeshCells)
}

func planWithDefaults(cfg Config) *plan.Plan {
	p := plan.New()
	if s, err := plan.ParseStrategy(cfg.JoinStrategy); err == nil {
		p.Defaults.Strategy = s
	}
	if cfg.Tolerance > 0 {
		p.Defaults.Tolerance = cfg.Tolerance
	}
	if cfg.OverlapMargin > 0 {
		p.Defaults.OverlapMargin = cfg.OverlapMargin
	}
	return p
}

// startup is called by Wails on app startup. The context is saved so we
// can emit runtime events later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate replaces the current plan with the result of evaluating Lisp
// source, rebuilds, and returns the meshes. This is the scripting entry
// point called by the frontend editor.
func (a *App) Evaluate(source string) RebuildResult {
	p, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		return RebuildResult{Errors: []EvalErrorData{{Message: err.Error()}}}
	}
	if len(evalErrs) > 0 {
		result := RebuildResult{}
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	a.mu.Lock()
	a.plan = p
	a.mu.Unlock()
	return a.Rebuild()
}

// AddWall adds a wall and schedules a rebuild. Returns the wall id.
func (a *App) AddWall(in WallInput) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, err := a.plan.AddWall(&plan.Wall{
		ID:        in.ID,
		Start:     in.Start,
		End:       in.End,
		Thickness: in.Thickness,
		Height:    in.Height,
	})
	if err != nil {
		return "", err
	}
	a.scheduleRebuild()
	return id, nil
}

// AddDoor adds a door and schedules a rebuild. Returns the door id.
func (a *App) AddDoor(in DoorInput) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, err := a.plan.AddDoor(&plan.Door{
		ID:     in.ID,
		WallID: in.WallID,
		Offset: in.Offset,
		Width:  in.Width,
		Height: in.Height,
	})
	if err != nil {
		return "", err
	}
	a.scheduleRebuild()
	return id, nil
}

// RemoveWall deletes a wall and its doors, then schedules a rebuild.
func (a *App) RemoveWall(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	ok := a.plan.RemoveWall(id)
	if ok {
		a.scheduleRebuild()
	}
	return ok
}

// RemoveDoor deletes a door, then schedules a rebuild.
func (a *App) RemoveDoor(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	ok := a.plan.RemoveDoor(id)
	if ok {
		a.scheduleRebuild()
	}
	return ok
}

// SetJoinStrategy changes the junction strategy and schedules a rebuild.
func (a *App) SetJoinStrategy(name string) error {
	s, err := plan.ParseStrategy(name)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.plan.Defaults.Strategy = s
	a.scheduleRebuild()
	return nil
}

// Rebuild runs the pipeline synchronously and returns the result.
func (a *App) Rebuild() RebuildResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doRebuild()
}

// scheduleRebuild coalesces bursts of edits into one rebuild. Editing
// tools call mutators on every confirmed change, not on drag frames, but
// a paste or script can still land many changes at once.
func (a *App) scheduleRebuild() {
	a.rebuild(func() {
		a.mu.Lock()
		res := a.doRebuild()
		a.mu.Unlock()
		if a.ctx != nil {
			runtime.EventsEmit(a.ctx, "model:rebuilt", res)
		}
	})
}

// doRebuild runs validation and the assembly pipeline on the current
// plan. Callers must hold a.mu.
func (a *App) doRebuild() RebuildResult {
	result := RebuildResult{}

	for _, v := range plan.Validate(a.plan) {
		result.Issues = append(result.Issues, IssueData{
			WallID:   v.WallID,
			DoorID:   v.DoorID,
			Severity: v.Severity.String(),
			Message:  v.Message,
		})
	}

	opts := assemble.Options{
		Joint:             joint.DefaultOptions(),
		CutterDepthFactor: a.cfg.CutterDepthFactor,
	}
	built := assemble.Build(a.kernel, a.plan, opts)
	result.Problems = built.Problems
	for _, p := range built.Problems {
		log.Printf("rebuild: %s", p)
	}

	for i, nm := range built.Networks {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:  nm.Mesh.Vertices,
			Normals:   nm.Mesh.Normals,
			Indices:   nm.Mesh.Indices,
			Name:      nm.Mesh.Name,
			Color:     colorPalette[i%len(colorPalette)],
			WallIDs:   nm.WallIDs,
			Merged:    nm.Merged,
			Materials: nm.Mesh.Materials,
		})
	}
	for _, dm := range built.Doors {
		result.Doors = append(result.Doors, MeshData{
			Vertices:  dm.Vertices,
			Normals:   dm.Normals,
			Indices:   dm.Indices,
			Name:      dm.Name,
			Color:     "#8B5A2B",
			Materials: dm.Materials,
		})
	}
	for _, e := range built.Extended {
		result.Extents = append(result.Extents, ExtentData{
			WallID:        e.Wall.ID,
			Start:         e.Start,
			End:           e.End,
			OriginalStart: e.OriginalStart(),
			OriginalEnd:   e.OriginalEnd(),
			Extended:      e.Extended,
		})
	}
	return result
}
