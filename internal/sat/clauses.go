package sat

import "strings"

type status uint8

const (
	statusLearnt    status = 0b001 // derived by conflict analysis, not supplied externally
	statusForgett   status = 0b010 // clause DB cleanup is permitted to discard it
	statusProtected status = 0b100 // clause DB cleanup must not discard it this round
)

// Clause is a disjunction of literals watched by the two-watched-literal
// scheme. A clause tagged forgettable may be dropped by ReduceDB; clauses
// supplied by an external propagator (sms.Propagator) as persistent must
// never be tagged forgettable, matching the Clause Buffer contract in §4.7.
type Clause struct {
	activity float64

	// The clause's literals. Always has at least two literals while the
	// clause is alive; nil once the clause has been removed.
	literals []Literal
	sliceRef *[]Literal

	// Position to resume the next-watch search from, speeding up repeated
	// calls to Propagate on long clauses.
	prevPos int

	// Literal block distance, used by ReduceDB to estimate clause quality.
	lbd uint32

	statusMask status
}

func (c *Clause) isLearnt() bool    { return c.statusMask&statusLearnt != 0 }
func (c *Clause) forgettable() bool { return c.statusMask&statusForgett != 0 }

func (c *Clause) isProtected() bool { return c.statusMask&statusProtected != 0 }
func (c *Clause) setProtected()     { c.statusMask |= statusProtected }
func (c *Clause) setUnprotected()   { c.statusMask &^= statusProtected }

// NewClause constructs and attaches a clause, simplifying it against the
// root-level assignment first unless it is a learnt clause (which is already
// simplified by construction). The second return value is false only if the
// clause is unsatisfiable at the root level.
func NewClause(s *Solver, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	return newTaggedClause(s, tmpLiterals, learnt, statusForgett)
}

// newTaggedClause is the shared constructor for both internally-learnt
// clauses and clauses ingested from an external propagator, which may be
// tagged forgettable or persistent independently of whether they were
// learnt by this engine.
func newTaggedClause(s *Solver, tmpLiterals []Literal, learnt bool, extraStatus status) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}

		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true // tautology
			}
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // clause is always true
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}

		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return nil, false
	case 1:
		return nil, s.enqueue(tmpLiterals[0], nil)
	default:
		ref := allocSlice(size)
		lits := (*ref)[:0]
		lits = append(lits, tmpLiterals...)

		c := &Clause{
			literals: lits,
			sliceRef: ref,
			prevPos:  2,
		}
		if learnt {
			c.statusMask |= statusLearnt
		}
		c.statusMask |= extraStatus

		if learnt {
			maxLevel := -1
			wl := -1
			for i := 1; i < len(c.literals); i++ {
				if level := s.level[c.literals[i].VarID()]; level > maxLevel {
					maxLevel = level
					wl = i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])

		return c, true
	}
}

func (c *Clause) locked(solver *Solver) bool {
	return solver.reason[c.literals[0].VarID()] == c
}

func (c *Clause) Remove(s *Solver) {
	s.Unwatch(c, c.literals[0].Opposite())
	s.Unwatch(c, c.literals[1].Opposite())
	if c.sliceRef != nil {
		freeSlice(c.sliceRef)
	}
	c.literals = nil
}

func (c *Clause) Simplify(s *Solver) bool {
	j := 0
	for i := 0; i < len(c.literals); i++ {
		switch s.LitValue(c.literals[i]) {
		case True:
			return true
		case False:
			// discard the literal.
		case Unknown:
			c.literals[j] = c.literals[i]
			j++
		}
	}
	c.literals = c.literals[:j]
	return false
}

func (c *Clause) Propagate(s *Solver, l Literal) bool {
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0] = c.literals[1]
		c.literals[1] = opp
	}

	if s.LitValue(c.literals[0]) == True {
		s.Watch(c, l, c.literals[0])
		return true
	}

	if c.prevPos >= len(c.literals) {
		c.prevPos = 2
	}
	for i := c.prevPos; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.prevPos = i
			c.literals[1] = c.literals[i]
			c.literals[i] = l.Opposite()
			s.Watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}
	for i := 2; i < c.prevPos; i++ {
		if s.LitValue(c.literals[i]) != False {
			c.prevPos = i
			c.literals[1] = c.literals[i]
			c.literals[i] = l.Opposite()
			s.Watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	s.Watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], c)
}

func (c *Clause) ExplainFailure(s *Solver) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for _, l := range c.literals {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	if c.isLearnt() {
		s.BumpClaActivity(c)
	}
	return s.tmpReason
}

func (c *Clause) ExplainAssign(s *Solver, l Literal) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for i := 1; i < len(c.literals); i++ {
		s.tmpReason = append(s.tmpReason, c.literals[i].Opposite())
	}
	if c.isLearnt() {
		s.BumpClaActivity(c)
	}
	return s.tmpReason
}

// Literals returns the clause's literals, in DIMACS form, for DB traversal
// (simplified-CNF / learned-clause log output, §6 "Persisted state").
func (c *Clause) Literals() []int {
	out := make([]int, len(c.literals))
	for i, l := range c.literals {
		out[i] = l.DIMACS()
	}
	return out
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
