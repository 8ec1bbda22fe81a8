// Package laws defines composable potential-energy contributions whose sum
// the integrators differentiate to obtain conservative forces.
package laws

import "github.com/kickthemoon/moo/internal/dual"

// Law computes the potential energy of the system given a configuration in
// dual-number form (for forward-mode AD) and the mass vector. The mass
// convention (per-DOF vs. per-particle) is detected by length comparison
// against q, exactly as spec.md describes.
type Law interface {
	Potential(q []dual.D, mass []float64) dual.D
}

// Registry aggregates laws; the total potential is their sum. Laws are
// never mutated after registration, and apply to every subsequent
// evaluation in the order they were added.
type Registry struct {
	laws []Law
}

// NewRegistry returns an empty law registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a law to the registry.
func (r *Registry) Add(law Law) {
	r.laws = append(r.laws, law)
}

// Potential sums the potential energy contributed by every registered law.
func (r *Registry) Potential(q []dual.D, mass []float64) dual.D {
	total := dual.Constant(0)
	for _, law := range r.laws {
		total = total.Add(law.Potential(q, mass))
	}
	return total
}

// massStride returns 3 when mass is given per-DOF (len(mass) == len(q)) and
// 1 when given per-particle (len(mass) == len(q)/3).
func massStride(q []dual.D, mass []float64) int {
	if len(mass) == len(q) {
		return 3
	}
	return 1
}
