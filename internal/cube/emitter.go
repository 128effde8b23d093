// Package cube implements the Cube Emitter (§4.6): it partitions the
// search space by emitting a cube (and blocking it with a persistent
// clause) once the assignment score crosses a configured cutoff.
package cube

import (
	"bufio"
	"fmt"
	"io"

	"github.com/smsgraph/sms/internal/sat"
	"github.com/smsgraph/sms/internal/trail"
	"github.com/smsgraph/sms/internal/truth"
)

// Scoring selects how the assignment score is computed (§4.6, §6
// "assignmentScoring").
type Scoring int

const (
	// ScoringCountAssigned counts assigned edge variables.
	ScoringCountAssigned Scoring = iota
	// ScoringCountAssignedWeighted weights each assigned edge variable
	// by its decision level plus one.
	ScoringCountAssignedWeighted
)

// Emitter holds the configuration and output sink for cube generation.
type Emitter struct {
	out      *bufio.Writer
	scoring  Scoring
	cutoff   int
	numEdges int

	// prerun suppresses emission during the configured warmup window
	// (inPrerunState in the original source).
	prerun bool
	// suppressed mirrors §4.6's lookahead skip rule; set by the caller
	// from lookahead.Driver.InLookaheadState.
	suppressed bool

	calls int
}

// New returns an Emitter writing cube lines to w for the first numEdges
// variables (the edge variables, per §4.2's numbering convention),
// scoring with the given Scoring and cutoff. cutoff == 0 disables
// emission entirely (§8 "assignmentCutoff = 0: cube emission disabled").
func New(w io.Writer, scoring Scoring, cutoff, numEdges int) *Emitter {
	return &Emitter{out: bufio.NewWriter(w), scoring: scoring, cutoff: cutoff, numEdges: numEdges}
}

// SetPrerun toggles the warmup window during which emission is
// suppressed (§4.6 "skip rules").
func (e *Emitter) SetPrerun(v bool) {
	e.prerun = v
}

// SetSuppressed toggles suppression driven by lookahead's
// InLookaheadState (§4.6 "skip rules").
func (e *Emitter) SetSuppressed(v bool) {
	e.suppressed = v
}

// Result reports what TryEmit did.
type Result struct {
	// Emitted is true iff a cube was written and a blocking clause
	// returned in Clause.
	Emitted bool
	Clause  []sat.Literal
}

// TryEmit computes the assignment score from tr and store and, if it has
// reached the configured cutoff, emits a cube line and returns the
// persistent blocking clause to add. Disabled (cutoff == 0) or suppressed
// (prerun or lookahead) calls always report Emitted == false, matching
// §4.6's "function returns false when a cube was emitted" contract
// inverted into an explicit Result for Go callers.
func (e *Emitter) TryEmit(tr *trail.Trail, store *truth.Store) Result {
	if e.cutoff == 0 || e.prerun || e.suppressed {
		return Result{}
	}

	fixed := store.FixedLiterals()
	fixedEdge := make([]sat.Literal, 0, len(fixed))
	for _, l := range fixed {
		if l.VarID() < e.numEdges {
			fixedEdge = append(fixedEdge, l)
		}
	}

	var clauseLits []sat.Literal
	score := 0
	for level := 0; level <= tr.Level(); level++ {
		for _, v := range tr.LevelVars(level) {
			// Fixed variables are counted and printed through fixedEdge.
			if v >= e.numEdges || store.IsFixed(v) {
				continue
			}
			switch e.scoring {
			case ScoringCountAssignedWeighted:
				score += level + 1
			default:
				score++
			}

			val := store.ValueOf(v)
			if val == truth.True {
				clauseLits = append(clauseLits, sat.NegativeLiteral(v))
			} else {
				clauseLits = append(clauseLits, sat.PositiveLiteral(v))
			}
		}

		if score+len(fixedEdge) < e.cutoff {
			continue
		}

		e.writeCube(clauseLits, fixedEdge)
		// fixedEdge literals are permanently true; a clause containing
		// any of them would be tautological, so only clauseLits is blocked.
		return Result{Emitted: true, Clause: append([]sat.Literal{}, clauseLits...)}
	}

	return Result{}
}

// writeCube writes the cube in "a l1 l2 ... 0" form (§4.6, §6 "Cube
// output"): the fixed edge literals first, as assigned, then the
// blocking-clause literals with their polarity flipped back to the
// original cube assignment.
func (e *Emitter) writeCube(clauseLits, fixedEdge []sat.Literal) {
	fmt.Fprint(e.out, "a")
	for _, l := range fixedEdge {
		fmt.Fprintf(e.out, " %d", l.DIMACS())
	}
	for _, l := range clauseLits {
		fmt.Fprintf(e.out, " %d", l.Opposite().DIMACS())
	}
	fmt.Fprint(e.out, " 0\n")
	e.out.Flush()
}
