package eventmodels

import (
	"math"
)

// GreekValue is one computed (or explicitly not computed) sensitivity. A not
// computed entry is distinct from a computed zero: it must never enter a sum.
type GreekValue struct {
	Kind     GreekKind
	Space    GreekSpace
	Raw      float64
	Computed bool
}

// Display applies the reporting scale from the static table. Not computed
// entries render as NaN so downstream formatting cannot mistake them for
// zero.
func (v GreekValue) Display() float64 {
	if !v.Computed {
		return math.NaN()
	}

	return v.Raw * v.Kind.DisplayScale()
}

type GreekCoordinate struct {
	Kind  GreekKind
	Space GreekSpace
}

// GreekVector maps the greek enumeration, tagged by space, to values. Entries
// that were disabled by configuration or lost to numeric degeneracy are
// present with Computed=false.
type GreekVector struct {
	values map[GreekCoordinate]GreekValue
}

func NewGreekVector() *GreekVector {
	return &GreekVector{values: make(map[GreekCoordinate]GreekValue)}
}

func (g *GreekVector) Set(kind GreekKind, space GreekSpace, raw float64) {
	g.values[GreekCoordinate{Kind: kind, Space: space}] = GreekValue{
		Kind:     kind,
		Space:    space,
		Raw:      raw,
		Computed: true,
	}
}

// SetNotComputed records that a greek was skipped or degenerate. It never
// overwrites a computed value.
func (g *GreekVector) SetNotComputed(kind GreekKind, space GreekSpace) {
	coord := GreekCoordinate{Kind: kind, Space: space}
	if v, ok := g.values[coord]; ok && v.Computed {
		return
	}

	g.values[coord] = GreekValue{Kind: kind, Space: space, Computed: false}
}

func (g *GreekVector) Get(kind GreekKind, space GreekSpace) (GreekValue, bool) {
	v, ok := g.values[GreekCoordinate{Kind: kind, Space: space}]
	return v, ok
}

// Raw returns the unscaled partial and whether it was actually computed.
func (g *GreekVector) Raw(kind GreekKind, space GreekSpace) (float64, bool) {
	v, ok := g.values[GreekCoordinate{Kind: kind, Space: space}]
	if !ok || !v.Computed {
		return 0, false
	}

	return v.Raw, true
}

// Accumulate adds another vector's computed entries into this one, excluding
// not computed values from the sum. A coordinate becomes computed in the
// aggregate as soon as any contributing vector computed it.
func (g *GreekVector) Accumulate(other *GreekVector) {
	if other == nil {
		return
	}

	for coord, v := range other.values {
		if !v.Computed {
			if _, ok := g.values[coord]; !ok {
				g.values[coord] = v
			}
			continue
		}

		cur, ok := g.values[coord]
		if !ok || !cur.Computed {
			g.values[coord] = v
			continue
		}

		cur.Raw += v.Raw
		g.values[coord] = cur
	}
}

// Coordinates returns the populated coordinates in canonical order: the kind
// enumeration order, future space before yield space.
func (g *GreekVector) Coordinates() []GreekCoordinate {
	out := make([]GreekCoordinate, 0, len(g.values))
	for _, kind := range AllGreekKinds() {
		for _, space := range []GreekSpace{FutureSpace, YieldSpace} {
			coord := GreekCoordinate{Kind: kind, Space: space}
			if _, ok := g.values[coord]; ok {
				out = append(out, coord)
			}
		}
	}

	return out
}

func (g *GreekVector) Len() int {
	return len(g.values)
}
