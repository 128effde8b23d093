// Package truth implements the propagator's own view of variable truth
// values (§3 "Truth Store"), kept separate from the engine's assignment
// array because the propagator only ever learns about literals through
// notify_assignment/notify_backtrack, not by reading the engine directly.
package truth

import "github.com/smsgraph/sms/internal/sat"

// Value is a lifted boolean matching the three-state contract of §3.
type Value int8

const (
	Unknown Value = 0
	True    Value = 1
	False   Value = -1
)

func (v Value) String() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Store maps variables to truth values and tracks which ones are fixed
// (permanent, assigned at decision level 0). Once a variable is fixed it
// never reverts to Unknown, even across Backtrack.
type Store struct {
	values []Value
	fixed  []bool

	// fixedLiterals is the ordered record of literals that became fixed,
	// mirroring cadicalSMS.hpp's fixedLiterals list.
	fixedLiterals []sat.Literal
}

// NewStore returns a store sized for nVars variables, all unknown.
func NewStore(nVars int) *Store {
	return &Store{
		values: make([]Value, nVars),
		fixed:  make([]bool, nVars),
	}
}

// Grow extends the store to accommodate a newly declared variable.
func (s *Store) Grow() {
	s.values = append(s.values, Unknown)
	s.fixed = append(s.fixed, false)
}

// NumVars returns the number of variables tracked by the store.
func (s *Store) NumVars() int {
	return len(s.values)
}

// ValueOf returns the current truth value of variable v (0-based).
func (s *Store) ValueOf(v int) Value {
	return s.values[v]
}

// LitValue returns the truth value of a literal, accounting for polarity.
func (s *Store) LitValue(l sat.Literal) Value {
	v := s.ValueOf(l.VarID())
	if !l.IsPositive() {
		return -v
	}
	return v
}

// IsFixed reports whether variable v has been permanently assigned.
func (s *Store) IsFixed(v int) bool {
	return s.fixed[v]
}

// FixedLiterals returns the ordered list of literals fixed so far.
func (s *Store) FixedLiterals() []sat.Literal {
	return s.fixedLiterals
}

// Assign records that literal l is now true, per notify_assignment (§4.1).
// It is a no-op if v is fixed (the value cannot have changed).
func (s *Store) Assign(l sat.Literal) {
	v := l.VarID()
	if s.fixed[v] {
		return
	}
	if l.IsPositive() {
		s.values[v] = True
	} else {
		s.values[v] = False
	}
}

// Fix marks l's variable as permanently assigned, per notify_fixed_assignment
// (§4.1). The literal is appended to FixedLiterals.
func (s *Store) Fix(l sat.Literal) {
	v := l.VarID()
	s.fixed[v] = true
	s.Assign(l)
	s.fixedLiterals = append(s.fixedLiterals, l)
}

// Unassign reverts variable v to Unknown unless it is fixed, per the
// notify_backtrack contract in §4.1 and §8's backtrack invariant.
func (s *Store) Unassign(v int) {
	if s.fixed[v] {
		return
	}
	s.values[v] = Unknown
}
