package sms

import (
	"fmt"
	"io"
	"time"

	"github.com/smsgraph/sms/internal/clausebuf"
	"github.com/smsgraph/sms/internal/cube"
	"github.com/smsgraph/sms/internal/graphview"
	"github.com/smsgraph/sms/internal/lookahead"
	"github.com/smsgraph/sms/internal/minimality"
	"github.com/smsgraph/sms/internal/reason"
	"github.com/smsgraph/sms/internal/sat"
	"github.com/smsgraph/sms/internal/trail"
	"github.com/smsgraph/sms/internal/truth"
)

// Propagator is the concrete sat.ExternalPropagator for graph search. It
// owns no engine state directly: everything it knows about the current
// assignment arrives through the Notify* callbacks and is mirrored into
// its own Truth Store and Trail, per the callback-ABI design note in §9.
type Propagator struct {
	cfg Config

	view    *graphview.View
	store   *truth.Store
	tr      *trail.Trail
	buf     clausebuf.Buffer
	reasons *reason.Index
	checker *minimality.Checker
	look    *lookahead.Driver
	emitter *cube.Emitter

	solver *sat.Solver
	prober solverProber

	changed bool
	started time.Time

	pendingLit sat.Literal
	pendingSet bool

	reasonActive bool
	reasonLit    sat.Literal
	reasonBuf    []sat.Literal
	reasonIdx    int

	Stats Stats

	// SymmetryLog, if set, receives one DIMACS-fragment line per
	// symmetry-breaking clause the Minimality Checker emits (§6 "Logging
	// file paths: symmetry-breaking clauses").
	SymmetryLog io.Writer
}

// New returns a Propagator for a graph of cfg.Vertices vertices, writing
// cube lines to cubeOut (io.Discard if cube generation is unused). The
// caller must still call Attach to wire it to a *sat.Solver before
// solving, since CBDecide's probing needs a live engine to assume/retract
// against (§4.5).
func New(cfg Config, cubeOut io.Writer) *Propagator {
	view := graphview.New(cfg.Vertices, cfg.Directed)
	numEdges := view.NumEdgeVars()

	p := &Propagator{
		cfg:     cfg,
		view:    view,
		store:   truth.NewStore(numEdges),
		tr:      trail.New(),
		reasons: reason.NewIndex(numEdges),
		checker: minimality.New(view, cfg.Partition, cfg.Cutoff),
		look:    lookahead.New(cfg.LookaheadHeuristic, cfg.LookaheadAll),
		emitter: cube.New(cubeOut, cfg.AssignmentScoring, cfg.AssignmentCutoff, numEdges),
		started: time.Now(),
	}
	return p
}

// Attach registers the propagator with s and records s as the engine to
// probe against for lookahead decisions. It also grows the propagator's
// internal structures to cover every variable s already knows about
// beyond the edge variables (§6 "lookaheadAll" needs non-edge variables
// too).
func (p *Propagator) Attach(s *sat.Solver) {
	p.solver = s
	p.prober = solverProber{s: s}
	for n := p.store.NumVars(); n < s.NumVariables(); n++ {
		p.store.Grow()
		p.reasons.Grow()
	}
	s.SetPropagator(p)
	s.SetPropagateViaCore(p.cfg.PropagateViaCore)
}

// Grow extends the propagator's per-variable structures for a newly
// declared non-edge variable (called whenever the caller adds an
// auxiliary variable to the engine after Attach).
func (p *Propagator) Grow() {
	p.store.Grow()
	p.reasons.Grow()
}

// solverProber adapts *sat.Solver's Probe/Unprobe to lookahead.Prober.
type solverProber struct {
	s *sat.Solver
}

func (sp solverProber) Assume(lit sat.Literal) (propagated int, conflict bool) {
	return sp.s.Probe(lit)
}

func (sp solverProber) Retract() {
	sp.s.Unprobe()
}

// NotifyAssignment mirrors newly assigned literals into the Truth Store
// and Trail (§4.1).
func (p *Propagator) NotifyAssignment(lits []sat.Literal) {
	for _, l := range lits {
		p.store.Assign(l)
		p.tr.NotifyAssigned(l.VarID())
	}
	p.changed = true
}

// NotifyNewDecisionLevel pushes a new Trail level and, if lookahead is
// enabled, seeds the Lookahead Driver's candidate set for it (§4.1, §4.5).
func (p *Propagator) NotifyNewDecisionLevel() {
	p.tr.NewLevel()
	if p.cfg.Lookahead || p.cfg.LookaheadAll {
		p.look.StartLevel(p.tr.Level(), p.candidates())
	}
}

// candidates returns the currently unassigned literals eligible for
// lookahead probing: edge variables only, unless LookaheadAll is set.
func (p *Propagator) candidates() []sat.Literal {
	limit := p.view.NumEdgeVars()
	if p.cfg.LookaheadAll {
		limit = p.store.NumVars()
	}
	var out []sat.Literal
	for v := 0; v < limit; v++ {
		if p.store.ValueOf(v) == truth.Unknown {
			out = append(out, sat.PositiveLiteral(v))
		}
	}
	return out
}

// NotifyBacktrack rewinds the Trail and Truth Store, clears any reason
// clauses invalidated by the rewind, and resets the Lookahead Driver if it
// had started probing at a level above newLevel (§4.1, §4.5 last bullet).
func (p *Propagator) NotifyBacktrack(newLevel int) {
	popped := p.tr.Backtrack(newLevel)
	for _, v := range popped {
		p.store.Unassign(v)
		p.reasons.Clear(v)
	}
	if lvl, started := p.look.StartedAtLevel(); started && newLevel < lvl {
		p.look.Reset()
	}
	p.changed = true
}

// NotifyFixedAssignment records a permanent (decision-level-0) fact.
func (p *Propagator) NotifyFixedAssignment(lit sat.Literal) {
	p.store.Fix(lit)
}

// CBCheckFoundModel validates a complete assignment. A pending clause in
// the buffer always rejects the model outright, per the interface
// contract; otherwise, if CheckSolutionInProp is set, the checkers run
// now (bypassing the frequency counter) before accepting (§4.1, §6). When
// AllModels is set, an otherwise-accepted model is counted, blocked, and
// rejected so the engine resumes searching for the next one instead of
// stopping at the first (§8 "Complete graph enumeration").
func (p *Propagator) CBCheckFoundModel(model []bool) bool {
	if !p.buf.Empty() {
		p.Stats.ModelsRejected++
		return false
	}
	if p.cfg.CheckSolutionInProp {
		p.runChecks(true)
		if !p.buf.Empty() {
			p.Stats.ModelsRejected++
			return false
		}
	}
	p.Stats.ModelsAccepted++
	if p.cfg.AllModels {
		p.pushClause(p.blockModel(model))
		return false
	}
	return true
}

// blockModel returns the clause excluding model's edge-variable
// assignment: the disjunction of the opposite of each edge variable's
// current literal. It is always fully falsified by model itself, so
// attaching it forces an immediate conflict and backtrack, the same way
// any other Clause Buffer clause does.
func (p *Propagator) blockModel(model []bool) []sat.Literal {
	lits := make([]sat.Literal, 0, p.view.NumEdgeVars())
	for v := 0; v < p.view.NumEdgeVars(); v++ {
		if model[v] {
			lits = append(lits, sat.NegativeLiteral(v))
		} else {
			lits = append(lits, sat.PositiveLiteral(v))
		}
	}
	return lits
}

// CBHasExternalClause drives the propagator dispatch (§4.4) whenever the
// buffer is empty and the trail has changed since the last poll, then
// reports whatever the buffer now holds.
func (p *Propagator) CBHasExternalClause() (forgettable bool, ok bool) {
	if p.buf.Empty() && p.changed {
		p.runChecks(false)
		p.changed = false
	}
	return p.buf.HasClause()
}

// CBAddExternalClauseLit drains the clause at the front of the buffer.
func (p *Propagator) CBAddExternalClauseLit() (sat.Literal, bool) {
	return p.buf.NextLit()
}

// CBDecide asks the Lookahead Driver for the next decision when lookahead
// is enabled, otherwise defers to the engine's own ordering.
func (p *Propagator) CBDecide() (sat.Literal, bool) {
	if !p.cfg.Lookahead && !p.cfg.LookaheadAll {
		return 0, false
	}
	unassigned := func(l sat.Literal) bool { return p.store.ValueOf(l.VarID()) == truth.Unknown }
	return p.look.Decide(unassigned, p.prober)
}

// CBPropagate returns a core-forced literal when PropagateViaCore routed
// a unit clause here instead of through the Clause Buffer (§9).
func (p *Propagator) CBPropagate() (sat.Literal, bool) {
	if !p.pendingSet {
		return 0, false
	}
	lit := p.pendingLit
	p.pendingSet = false
	return lit, true
}

// CBAddReasonClauseLit streams the reason clause for lit one literal at a
// time, draining it from the Reason Index on first request (§4.8).
func (p *Propagator) CBAddReasonClauseLit(lit sat.Literal) (sat.Literal, bool) {
	if !p.reasonActive || p.reasonLit != lit {
		p.reasonBuf = p.reasons.Drain(lit)
		p.reasonLit = lit
		p.reasonIdx = 0
		p.reasonActive = true
	}
	if p.reasonIdx >= len(p.reasonBuf) {
		p.reasonActive = false
		p.reasonBuf = nil
		return 0, false
	}
	out := p.reasonBuf[p.reasonIdx]
	p.reasonIdx++
	return out, true
}

// runChecks implements the dispatch order of §4.4: the Minimality Checker
// runs every Frequency-th call (or unconditionally when force is true, as
// CBCheckFoundModel needs); if it emits nothing and the cube cutoff
// applies, the Cube Emitter gets a turn. force bypasses both the
// frequency counter and the cube prerun/lookahead suppression, since a
// found model must be checked exhaustively regardless of warmup state.
func (p *Propagator) runChecks(force bool) {
	p.Stats.CallsPropagator++

	runMinimality := !p.cfg.TurnoffSMS && (force ||
		(p.cfg.Frequency > 0 && p.Stats.CallsPropagator%int64(p.cfg.Frequency) == 0))

	if runMinimality {
		p.Stats.CallsCheck++
		if res := p.checker.Check(p.store); res.Emitted {
			p.Stats.ClausesEmitted++
			p.logSymmetryClause(res.Clause)
			p.pushClause(res.Clause)
			return
		}
	}

	if p.cfg.AssignmentCutoff == 0 {
		return
	}

	p.emitter.SetPrerun(!force && p.inPrerun())
	p.emitter.SetSuppressed(!force && p.look.InLookaheadState())

	if res := p.emitter.TryEmit(p.tr, p.store); res.Emitted {
		p.Stats.CubesEmitted++
		p.pushClause(res.Clause)
	}
}

// inPrerun reports whether the Cube Emitter's warmup window (call-count or
// wall-clock based) is still active.
func (p *Propagator) inPrerun() bool {
	if p.cfg.AssignmentCutoffPrerun > 0 && p.Stats.CallsPropagator <= int64(p.cfg.AssignmentCutoffPrerun) {
		return true
	}
	if p.cfg.AssignmentCutoffPrerunTime > 0 && time.Since(p.started) < p.cfg.AssignmentCutoffPrerunTime {
		return true
	}
	return false
}

// pushClause routes an emitted blocking clause (always persistent, per
// §4.3/§4.6) either through CBPropagate (when it is a unit and
// PropagateViaCore is enabled) or through the Clause Buffer.
func (p *Propagator) pushClause(lits []sat.Literal) {
	if len(lits) == 1 && p.cfg.PropagateViaCore {
		p.reasons.Store(lits[0], lits)
		p.pendingLit = lits[0]
		p.pendingSet = true
		return
	}
	p.buf.Push(lits, false)
}

// logSymmetryClause appends a DIMACS-fragment line for a symmetry-breaking
// clause to SymmetryLog, if configured.
func (p *Propagator) logSymmetryClause(lits []sat.Literal) {
	if p.SymmetryLog == nil {
		return
	}
	for _, l := range lits {
		fmt.Fprintf(p.SymmetryLog, "%d ", l.DIMACS())
	}
	fmt.Fprintln(p.SymmetryLog, "0")
}
