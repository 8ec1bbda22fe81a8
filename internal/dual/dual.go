// Package dual implements forward-mode automatic differentiation over a
// single directional derivative: D = v + d*eps with eps^2 = 0.
package dual

import (
	"math"

	"github.com/pkg/errors"
)

// D is a dual number: a value paired with one directional derivative.
type D struct {
	V float64 // primal value
	R float64 // derivative (rate)
}

// Constant builds a dual with zero derivative.
func Constant(v float64) D {
	return D{V: v, R: 0}
}

// Variable builds a dual seeded as the differentiation target (derivative 1).
func Variable(v float64) D {
	return D{V: v, R: 1}
}

// Add returns a+b.
func (a D) Add(b D) D {
	return D{V: a.V + b.V, R: a.R + b.R}
}

// Sub returns a-b.
func (a D) Sub(b D) D {
	return D{V: a.V - b.V, R: a.R - b.R}
}

// Neg returns -a.
func (a D) Neg() D {
	return D{V: -a.V, R: -a.R}
}

// Mul returns a*b via the product rule.
func (a D) Mul(b D) D {
	return D{V: a.V * b.V, R: a.V*b.R + a.R*b.V}
}

// Scale returns a scaled by a plain real constant.
func (a D) Scale(c float64) D {
	return D{V: a.V * c, R: a.R * c}
}

// Div returns a/b via the quotient rule. b.V == 0 is a domain error.
func (a D) Div(b D) (D, error) {
	if b.V == 0 {
		return D{}, errors.New("dual: division by zero value")
	}
	return D{
		V: a.V / b.V,
		R: (a.R*b.V - a.V*b.R) / (b.V * b.V),
	}, nil
}

// Recip returns 1/a. a.V == 0 is a domain error.
func (a D) Recip() (D, error) {
	if a.V == 0 {
		return D{}, errors.New("dual: reciprocal of zero value")
	}
	return D{V: 1 / a.V, R: -a.R / (a.V * a.V)}, nil
}

// Sqrt returns sqrt(a). Defined at a.V == 0 only when a.R == 0 too (the
// derivative of sqrt blows up at zero unless the incoming rate is already
// zero, in which case the result rate is taken to be zero as well).
func (a D) Sqrt() (D, error) {
	if a.V < 0 {
		return D{}, errors.Errorf("dual: sqrt of negative value %g", a.V)
	}
	if a.V == 0 {
		if a.R != 0 {
			return D{}, errors.New("dual: sqrt at zero with nonzero derivative is undefined")
		}
		return D{V: 0, R: 0}, nil
	}
	sv := math.Sqrt(a.V)
	return D{V: sv, R: 0.5 * a.R / sv}, nil
}
