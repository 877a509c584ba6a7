package eventmodels

import "fmt"

// GreekKind is the closed enumeration of sensitivities the engines produce.
// All lookup tables below are keyed on it; there is no string-keyed dynamic
// branching anywhere else.
type GreekKind string

const (
	Delta  GreekKind = "delta"
	Gamma  GreekKind = "gamma"
	Vega   GreekKind = "vega"
	Theta  GreekKind = "theta"
	Vanna  GreekKind = "vanna"
	Volga  GreekKind = "volga"
	Charm  GreekKind = "charm"
	Veta   GreekKind = "veta"
	Speed  GreekKind = "speed"
	Color  GreekKind = "color"
	Zomma  GreekKind = "zomma"
	Ultima GreekKind = "ultima"
)

// AllGreekKinds returns the enumeration in its canonical display order.
func AllGreekKinds() []GreekKind {
	return []GreekKind{Delta, Gamma, Vega, Theta, Vanna, Volga, Charm, Veta, Speed, Color, Zomma, Ultima}
}

func (k GreekKind) Validate() error {
	if _, ok := derivativeOrder[k]; !ok {
		return fmt.Errorf("GreekKind: Validate: invalid greek kind: %s", k)
	}

	return nil
}

var derivativeOrder = map[GreekKind]int{
	Delta:  1,
	Vega:   1,
	Theta:  1,
	Gamma:  2,
	Vanna:  2,
	Volga:  2,
	Charm:  2,
	Veta:   2,
	Speed:  3,
	Color:  3,
	Zomma:  3,
	Ultima: 3,
}

// Order is the total derivative order of the greek.
func (k GreekKind) Order() int {
	return derivativeOrder[k]
}

// displayScale holds the reporting conventions: theta is the negative of the
// raw time derivative, annualized over 252 trading days and scaled by 1000;
// second and third order greeks (other than gamma) are scaled by 1000; delta,
// vega and price-space gamma stay unscaled.
var displayScale = map[GreekKind]float64{
	Delta:  1,
	Gamma:  1,
	Vega:   1,
	Theta:  -1000.0 / 252.0,
	Vanna:  1000,
	Volga:  1000,
	Charm:  1000,
	Veta:   1000,
	Speed:  1000,
	Color:  1000,
	Zomma:  1000,
	Ultima: 1000,
}

// DisplayScale maps a raw partial derivative to its display value. The same
// table serves both the analytical and the numerical engine so their outputs
// are directly comparable.
func (k GreekKind) DisplayScale() float64 {
	return displayScale[k]
}

// SpaceDependent reports whether the greek involves a partial with respect to
// the future price and therefore changes under the future -> yield transform.
// Pure sigma/time greeks are identical in both spaces.
var spaceDependent = map[GreekKind]bool{
	Delta:  true,
	Gamma:  true,
	Vanna:  true,
	Charm:  true,
	Speed:  true,
	Color:  true,
	Zomma:  true,
	Vega:   false,
	Theta:  false,
	Volga:  false,
	Veta:   false,
	Ultima: false,
}

func (k GreekKind) SpaceDependent() bool {
	return spaceDependent[k]
}

type GreekSpace string

const (
	FutureSpace GreekSpace = "future"
	YieldSpace  GreekSpace = "yield"
)

func (s GreekSpace) Validate() error {
	if s != FutureSpace && s != YieldSpace {
		return fmt.Errorf("GreekSpace: Validate: invalid greek space: %s", s)
	}

	return nil
}
