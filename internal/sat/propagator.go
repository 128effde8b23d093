package sat

// ExternalPropagator is the callback surface a theory plugin implements to
// participate in the CDCL search loop. It is a direct translation of the
// virtual-dispatch `CaDiCaL::ExternalPropagator` / `FixedAssignmentListener`
// interfaces used by the reference implementation into a single Go
// interface with one concrete implementer per engine (no inheritance
// hierarchy is preserved, per the callback-ABI design note).
//
// Every method returning an "or none" value uses (value, ok bool) rather
// than a 0-literal sentinel: Literal(0) is the positive literal of variable
// 0 in this encoding (see PositiveLiteral), so it cannot double as a
// terminator the way DIMACS 0 does in the C ABI this is adapted from.
type ExternalPropagator interface {
	// NotifyAssignment is called whenever one or more literals become
	// assigned, whether by decision, unit propagation, or a core-forced
	// propagation. It must be total and side-effect-only on the
	// propagator's internal state.
	NotifyAssignment(lits []Literal)

	// NotifyNewDecisionLevel is called before the engine pushes a new
	// decision level onto its own trail.
	NotifyNewDecisionLevel()

	// NotifyBacktrack is called before the engine unwinds levels above
	// newLevel. Any reason clause the propagator has stored for a literal
	// assigned above newLevel becomes invalid at this point.
	NotifyBacktrack(newLevel int)

	// NotifyFixedAssignment is called when lit becomes a top-level
	// (permanent) fact.
	NotifyFixedAssignment(lit Literal)

	// CBCheckFoundModel is called when the engine believes the current
	// full assignment satisfies the CNF. If the propagator has queued a
	// clause (CBHasExternalClause would return ok=true), it must return
	// false: the model is rejected and the queued clause will be ingested
	// on the next poll.
	CBCheckFoundModel(model []bool) bool

	// CBHasExternalClause reports whether a clause is ready to be drained
	// via CBAddExternalClauseLit, and whether it is forgettable.
	CBHasExternalClause() (forgettable bool, ok bool)

	// CBAddExternalClauseLit returns the next literal of the clause at the
	// front of the propagator's buffer, popping it. ok is false once the
	// clause is exhausted, at which point the buffer entry is dropped.
	CBAddExternalClauseLit() (lit Literal, ok bool)

	// CBDecide returns the next decision literal, or ok=false to let the
	// engine fall back to its own variable ordering.
	CBDecide() (lit Literal, ok bool)

	// CBPropagate returns a literal to force-assign, or ok=false. If ok is
	// true, the propagator must be ready to supply a reason clause via
	// CBAddReasonClauseLit on demand.
	CBPropagate() (lit Literal, ok bool)

	// CBAddReasonClauseLit streams the clause that justifies lit,
	// literal-by-literal. ok is false once the clause is exhausted.
	CBAddReasonClauseLit(lit Literal) (reasonLit Literal, ok bool)
}

// emptyClauseConflict is a sentinel used to signal that a clause drained
// from the buffer or an ingested reason had no literals at all (an
// unconditional, top-level conflict).
var emptyClauseConflict = &Clause{}

// newReasonClause wraps lits as a non-watched explanation object used only
// by conflict analysis (ExplainAssign/ExplainFailure); it is never part of
// the watch lists or clause database, since the propagation it explains was
// already performed by the core via CBPropagate.
func newReasonClause(lits []Literal) *Clause {
	l2 := make([]Literal, len(lits))
	copy(l2, lits)
	return &Clause{literals: l2}
}

// evaluateNow inspects c under the current assignment and reports whether
// it is an immediate conflict (all literals false) or a new unit (all but
// literals[0] false, literals[0] unknown). It assumes literals[0] is the
// candidate to be enqueued, which holds for every clause built by
// attachBuffered (its two highest-level literals are moved to position 0
// and 1) and for reason clauses (position 0 is always the propagated
// literal).
func (c *Clause) evaluateNow(s *Solver) (conflict bool, unit bool) {
	first := s.LitValue(c.literals[0])
	if first == True {
		return false, false
	}
	for i := 1; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			return false, false
		}
	}
	return first == False, first == Unknown
}

// attachBuffered constructs and watches a clause coming from the Clause
// Buffer (graph/minimality/cube blocking clauses, or clauses ingested via
// CBHasExternalClause). By construction, every literal the core places
// in the Clause Buffer is the negation of a currently-true edge
// assignment, so such clauses are always fully falsified at the moment
// they are added: attachBuffered picks the two highest decision-level
// literals as the watched pair so the clause is correctly re-armed for
// propagation as soon as the engine backtracks past the level that
// falsified them.
func attachBuffered(s *Solver, lits []Literal, forgettable bool) *Clause {
	switch len(lits) {
	case 0:
		return emptyClauseConflict
	case 1:
		return newReasonClause(lits)
	}

	ref := allocSlice(len(lits))
	l2 := (*ref)[:0]
	l2 = append(l2, lits...)
	c := &Clause{literals: l2, sliceRef: ref, prevPos: 2}
	if forgettable {
		c.statusMask |= statusForgett
	}

	idxA := 0
	for i := 1; i < len(c.literals); i++ {
		if s.level[c.literals[i].VarID()] > s.level[c.literals[idxA].VarID()] {
			idxA = i
		}
	}
	c.literals[0], c.literals[idxA] = c.literals[idxA], c.literals[0]

	idxB := 1
	for i := 2; i < len(c.literals); i++ {
		if s.level[c.literals[i].VarID()] > s.level[c.literals[idxB].VarID()] {
			idxB = i
		}
	}
	c.literals[1], c.literals[idxB] = c.literals[idxB], c.literals[1]

	s.Watch(c, c.literals[0].Opposite(), c.literals[1])
	s.Watch(c, c.literals[1].Opposite(), c.literals[0])

	return c
}

// SetPropagator registers the theory plugin driving this engine. Pass nil
// to run as a plain CDCL solver (the vertices=2 / turnoffSMS boundary case
// in §8).
func (s *Solver) SetPropagator(p ExternalPropagator) {
	s.propagator = p
}

// SetPropagateViaCore toggles whether unit propagation produced by the
// core is routed through CBPropagate (propagateLiteralsCadical=true) or
// left entirely to the Clause Buffer path (CBHasExternalClause). The two
// paths are mutually exclusive for any single literal: when enabled, a
// clause drained via CBHasExternalClause that turns out to be a unit is an
// invariant violation (see SPEC_FULL.md Open Questions) and panics rather
// than silently double-propagating.
func (s *Solver) SetPropagateViaCore(v bool) {
	s.propagateViaCore = v
}

// pollCheckFoundModel asks the propagator to validate a complete
// assignment. It returns true if the model is accepted.
func (s *Solver) pollCheckFoundModel() bool {
	if s.propagator == nil {
		return true
	}
	model := make([]bool, s.NumVariables())
	for i := range model {
		model[i] = s.VarValue(i) == True
	}
	return s.propagator.CBCheckFoundModel(model)
}

// pollCorePropagation asks the propagator for a forced literal via
// CBPropagate and, if one is offered, eagerly drains its reason clause and
// enqueues it. It returns a non-nil conflict clause if the forced literal
// is already falsified.
func (s *Solver) pollCorePropagation() *Clause {
	if s.propagator == nil || !s.propagateViaCore {
		return nil
	}
	lit, ok := s.propagator.CBPropagate()
	if !ok {
		return nil
	}

	// The streamed clause contains lit itself; it is kept once, at
	// position 0.
	reasonLits := []Literal{lit}
	for {
		next, more := s.propagator.CBAddReasonClauseLit(lit)
		if !more {
			break
		}
		if next != lit {
			reasonLits = append(reasonLits, next)
		}
	}

	c := newReasonClause(reasonLits)
	if conflict, _ := c.evaluateNow(s); conflict {
		return c
	}
	s.enqueue(lit, c)
	return nil
}

// pollExternalClause asks the propagator for a buffered clause via
// CBHasExternalClause/CBAddExternalClauseLit and attaches it. It returns a
// non-nil conflict clause if the drained clause is immediately falsified.
func (s *Solver) pollExternalClause() *Clause {
	if s.propagator == nil {
		return nil
	}
	forgettable, ok := s.propagator.CBHasExternalClause()
	if !ok {
		return nil
	}

	var lits []Literal
	for {
		l, more := s.propagator.CBAddExternalClauseLit()
		if !more {
			break
		}
		lits = append(lits, l)
	}

	if s.propagateViaCore && len(lits) == 1 {
		panic("sat: external clause buffer produced a unit while propagateViaCore is enabled; " +
			"unit propagation must be routed exclusively through CBPropagate (see SPEC_FULL.md)")
	}

	c := attachBuffered(s, lits, forgettable)
	if c == emptyClauseConflict {
		return c
	}
	if len(lits) > 1 {
		s.constraints = append(s.constraints, c)
	}
	if conflict, unit := c.evaluateNow(s); conflict {
		return c
	} else if unit {
		s.enqueue(c.literals[0], c)
	}
	return nil
}
