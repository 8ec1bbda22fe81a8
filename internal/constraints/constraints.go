// Package constraints projects phase-space state to satisfy positional and
// velocity constraints after an integrator's drift step.
package constraints

import "github.com/kickthemoon/moo/internal/state"

// Constraint mutates q/v in place to satisfy a geometric invariant. A
// well-behaved constraint is idempotent: projecting state that already
// satisfies it is a no-op.
type Constraint interface {
	Project(s *state.PhaseSpace)
}
