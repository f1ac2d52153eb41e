package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/lath/pkg/geom"
	"github.com/chazu/lath/pkg/plan"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms lath Lisp source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     This avoids registering keyword symbols as globals, which would
//     conflict with user variables of the same name.
//
//  2. Kebab-case to underscore: join-strategy -> join_strategy.
//     zygomys does not allow hyphens in identifiers (it reads them as
//     subtraction).
//
//  3. ; line comments become // comments, which is what zygomys reads.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vec3 so it can be passed between builtins.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.2f %.2f %.2f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpWallRef wraps a wall id so (door :wall w) can take either a
// reference returned by (wall ...) or a plain id string.
type sexpWallRef struct {
	id string
}

func (w *sexpWallRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(wallref %q)", w.id)
}
func (w *sexpWallRef) Type() *zygo.RegisteredType { return nil }

// sexpDoorRef wraps a door id.
type sexpDoorRef struct {
	id string
}

func (d *sexpDoorRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(doorref %q)", d.id)
}
func (d *sexpDoorRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_miter) and plain strings.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a geom.Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toWallID extracts a wall id from a wall reference or plain string.
func toWallID(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *sexpWallRef:
		return v.id, nil
	case *zygo.SexpStr:
		return v.S, nil
	}
	return "", fmt.Errorf("expected wall reference or id string, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the lath DSL builtins into a zygomys
// environment. The builtins populate the provided plan during
// evaluation.
//
// Source must have been preprocessed with preprocessSource so :keyword
// tokens are recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *plan.Plan) {

	// -----------------------------------------------------------------------
	// (vec3 1 0 2.5)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: geom.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (wall "w1" (vec3 0 0 0) (vec3 4 0 0) :thickness 0.375 :height 2.7)
	// The id is optional; omitted ids are generated.
	// -----------------------------------------------------------------------
	env.AddFunction("wall", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pos := pa.positional

		w := &plan.Wall{}
		if len(pos) > 0 {
			if str, ok := pos[0].(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
				w.ID = str.S
				pos = pos[1:]
			}
		}
		if len(pos) != 2 {
			return zygo.SexpNull, fmt.Errorf("wall requires start and end points, got %d positional args", len(pos))
		}

		var err error
		if w.Start, err = toVec3(pos[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("wall: start: %w", err)
		}
		if w.End, err = toVec3(pos[1]); err != nil {
			return zygo.SexpNull, fmt.Errorf("wall: end: %w", err)
		}
		if v, ok := pa.kw["thickness"]; ok {
			if w.Thickness, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: thickness: %w", err)
			}
		}
		if v, ok := pa.kw["height"]; ok {
			if w.Height, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: height: %w", err)
			}
		}

		id, err := p.AddWall(w)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wall: %w", err)
		}
		return &sexpWallRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (door :wall "w1" :offset 1.2 :width 0.9 :height 2.1)
	// The :wall argument takes a wall reference or an id string.
	// -----------------------------------------------------------------------
	env.AddFunction("door", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d := &plan.Door{}

		v, ok := pa.kw["wall"]
		if !ok && len(pa.positional) > 0 {
			v = pa.positional[0]
			ok = true
		}
		if !ok {
			return zygo.SexpNull, fmt.Errorf("door requires a :wall argument")
		}
		var err error
		if d.WallID, err = toWallID(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("door: wall: %w", err)
		}
		if v, ok := pa.kw["id"]; ok {
			if d.ID, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: id: %w", err)
			}
		}
		if v, ok := pa.kw["offset"]; ok {
			if d.Offset, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: offset: %w", err)
			}
		}
		if v, ok := pa.kw["width"]; ok {
			if d.Width, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: width: %w", err)
			}
		}
		if v, ok := pa.kw["height"]; ok {
			if d.Height, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: height: %w", err)
			}
		}

		id, err := p.AddDoor(d)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("door: %w", err)
		}
		return &sexpDoorRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (join-strategy :miter)
	//
	// Note: registered as "join_strategy" because zygomys does not
	// support hyphens in identifiers; the preprocessor rewrites the
	// source form.
	// -----------------------------------------------------------------------
	env.AddFunction("join_strategy", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("join-strategy requires exactly 1 argument")
		}
		s, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join-strategy: %w", err)
		}
		strategy, err := plan.ParseStrategy(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join-strategy: %w", err)
		}
		p.Defaults.Strategy = strategy
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (tolerance 0.02)  -- endpoint matching tolerance
	// -----------------------------------------------------------------------
	env.AddFunction("tolerance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("tolerance requires exactly 1 argument")
		}
		t, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tolerance: %w", err)
		}
		if t <= 0 {
			return zygo.SexpNull, fmt.Errorf("tolerance must be positive, got %v", t)
		}
		p.Defaults.Tolerance = t
		return zygo.SexpNull, nil
	})
}
