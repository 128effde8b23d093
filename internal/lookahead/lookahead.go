// Package lookahead implements the Lookahead Driver (§4.5): it overrides
// the engine's default decision heuristic by probing both polarities of
// candidate literals and picking the one with the best propagation
// score.
package lookahead

import "github.com/smsgraph/sms/internal/sat"

// Heuristic selects how probe counts (p+, p-) are scored.
type Heuristic int

const (
	// HeuristicProduct implements "p+ * p- + p+ + p-", heuristic 1 in
	// §4.5.
	HeuristicProduct Heuristic = 1
)

// Prober is the narrow slice of engine functionality the driver needs to
// probe a literal: assume it, propagate, count, and retract.
type Prober interface {
	// Assume tentatively assigns lit at a new decision level and
	// propagates. It returns the number of literals newly assigned
	// (including lit itself) and whether a conflict was reached.
	Assume(lit sat.Literal) (propagated int, conflict bool)

	// Retract undoes the most recent Assume.
	Retract()
}

// Driver implements the probing search of §4.5. It is stateful across
// cb_decide calls within a single decision level: the candidate set is
// seeded once per level and consumed one literal at a time.
type Driver struct {
	heuristic Heuristic
	allVars   bool // lookaheadAll: probe every variable, not just edges

	candidates     []sat.Literal
	startedAtLevel int
	started        bool

	// paused suppresses cube emission while a literal is being probed
	// (inLookaheadState in the original source).
	paused bool
}

// New returns a Driver using the given heuristic. allVars mirrors the
// lookaheadAll configuration flag (§6): when false, only edge variables
// participate.
func New(heuristic Heuristic, allVars bool) *Driver {
	return &Driver{heuristic: heuristic, allVars: allVars}
}

// StartedAtLevel reports the decision level StartLevel was last called
// with, and whether the driver has been started since the last Reset.
func (d *Driver) StartedAtLevel() (level int, started bool) {
	return d.startedAtLevel, d.started
}

// InLookaheadState reports whether the driver is currently probing a
// literal, used by the Cube Emitter to suppress cube emission (§4.5,
// §4.6 "skip rules").
func (d *Driver) InLookaheadState() bool {
	return d.paused
}

// Reset clears all driver state, called when the engine backtracks past
// the decision level the driver started probing at (§4.5 last bullet).
func (d *Driver) Reset() {
	*d = Driver{heuristic: d.heuristic, allVars: d.allVars}
}

// StartLevel seeds the candidate set with every literal in candidates
// for a newly entered decision level.
func (d *Driver) StartLevel(level int, candidates []sat.Literal) {
	d.candidates = append([]sat.Literal(nil), candidates...)
	d.startedAtLevel = level
	d.started = true
}

// Decide runs the probing search over the remaining seeded candidates
// and returns the literal with the best score, or ok=false if no
// candidates remain unassigned (the driver has nothing left to decide
// at this level; the caller should fall back to the engine default).
func (d *Driver) Decide(unassigned func(sat.Literal) bool, prober Prober) (lit sat.Literal, ok bool) {
	if !d.started {
		return 0, false
	}

	bestScore := -1
	var best sat.Literal
	found := false

	d.paused = true
	defer func() { d.paused = false }()

	remaining := d.candidates[:0]
	for _, cand := range d.candidates {
		if !unassigned(cand) {
			continue // already decided since the candidate set was seeded
		}
		remaining = append(remaining, cand)

		pPos := probeCount(prober, cand)
		pNeg := probeCount(prober, cand.Opposite())

		score := d.score(pPos, pNeg)
		if !found || score > bestScore || (score == bestScore && cand.VarID() < best.VarID()) {
			bestScore = score
			best = cand
			found = true
		}
	}
	d.candidates = remaining

	return best, found
}

// probeCount assumes lit, counts the literals it propagated, and
// retracts, per the "temporarily assume, propagate, count, retract"
// algorithm of §4.5. A conflict is not treated specially: the propagated
// count is reported as-is and scored like any other probe.
func probeCount(prober Prober, lit sat.Literal) int {
	n, _ := prober.Assume(lit)
	prober.Retract()
	return n
}

func (d *Driver) score(pPos, pNeg int) int {
	switch d.heuristic {
	case HeuristicProduct:
		return pPos*pNeg + pPos + pNeg
	default:
		return pPos*pNeg + pPos + pNeg
	}
}
