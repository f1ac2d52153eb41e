package plan

import "fmt"

// ValidationSeverity indicates whether a finding blocks the rebuild or is
// merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks nothing here, but the UI treats it as fatal
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	WallID   string
	DoorID   string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	switch {
	case e.DoorID != "":
		return fmt.Sprintf("[%s] door %s: %s", e.Severity, e.DoorID, e.Message)
	case e.WallID != "":
		return fmt.Sprintf("[%s] wall %s: %s", e.Severity, e.WallID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
}

// Validate runs all plan-level checks and returns the findings. The
// geometry pipeline itself never validates; degenerate input that passes
// this gate gets the documented fallback behavior instead of an error.
// This function is read-only and never mutates the plan.
func Validate(p *Plan) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateWalls(p)...)
	errs = append(errs, validateDoors(p)...)
	return errs
}

func validateWalls(p *Plan) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(p.Walls))

	for _, w := range p.Walls {
		if seen[w.ID] {
			errs = append(errs, ValidationError{
				WallID:   w.ID,
				Message:  "duplicate wall id",
				Severity: SeverityError,
			})
			continue
		}
		seen[w.ID] = true

		if l := w.Length(); l < MinWallLength {
			errs = append(errs, ValidationError{
				WallID:   w.ID,
				Message:  fmt.Sprintf("wall length %.4f is below the minimum %.4f", l, MinWallLength),
				Severity: SeverityError,
			})
		}
		if w.Thickness <= 0 {
			errs = append(errs, ValidationError{
				WallID:   w.ID,
				Message:  fmt.Sprintf("thickness is %.4f, must be positive", w.Thickness),
				Severity: SeverityError,
			})
		}
		if w.Height <= 0 {
			errs = append(errs, ValidationError{
				WallID:   w.ID,
				Message:  fmt.Sprintf("height is %.4f, must be positive", w.Height),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

func validateDoors(p *Plan) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(p.Doors))

	for _, d := range p.Doors {
		if seen[d.ID] {
			errs = append(errs, ValidationError{
				DoorID:   d.ID,
				Message:  "duplicate door id",
				Severity: SeverityError,
			})
			continue
		}
		seen[d.ID] = true

		if d.Width <= 0 || d.Height <= 0 {
			errs = append(errs, ValidationError{
				DoorID:   d.ID,
				Message:  fmt.Sprintf("opening is %.4f x %.4f, both must be positive", d.Width, d.Height),
				Severity: SeverityError,
			})
		}

		w := p.Wall(d.WallID)
		if w == nil {
			errs = append(errs, ValidationError{
				DoorID:   d.ID,
				Message:  fmt.Sprintf("references unknown wall %q", d.WallID),
				Severity: SeverityError,
			})
			continue
		}

		// Out-of-range offsets are advisory: the assembler uses the
		// offset as given and the cut simply misses the wall.
		if d.Offset < 0 || d.Offset > w.Length() {
			errs = append(errs, ValidationError{
				DoorID:   d.ID,
				Message:  fmt.Sprintf("offset %.4f is outside wall %s (length %.4f)", d.Offset, w.ID, w.Length()),
				Severity: SeverityWarning,
			})
		}
		if d.Height > w.Height {
			errs = append(errs, ValidationError{
				DoorID:   d.ID,
				Message:  fmt.Sprintf("door height %.4f exceeds wall height %.4f", d.Height, w.Height),
				Severity: SeverityWarning,
			})
		}
		if d.Width > w.Length() {
			errs = append(errs, ValidationError{
				DoorID:   d.ID,
				Message:  fmt.Sprintf("door width %.4f exceeds wall length %.4f", d.Width, w.Length()),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}
