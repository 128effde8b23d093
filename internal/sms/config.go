// Package sms implements the Propagator Dispatch and Engine Bridge (§4.1,
// §4.4): the concrete sat.ExternalPropagator that composes the Graph View,
// Minimality Checker, Lookahead Driver, Cube Emitter, Clause Buffer, Reason
// Index and Truth Store into the callback contract the core engine expects.
package sms

import (
	"time"

	"github.com/smsgraph/sms/internal/cube"
	"github.com/smsgraph/sms/internal/lookahead"
)

// Config is the full configuration surface of §6, minus the pure I/O
// options (input/output file paths) owned by main.go.
type Config struct {
	// Vertices is the graph size; edge variables occupy [0, E) in the
	// global 0-based variable numbering, per §4.2.
	Vertices int
	Directed bool

	// Partition is the initial ordered partition passed to the
	// Minimality Checker; nil means unrestricted.
	Partition []int

	// Frequency runs the Minimality Checker every f-th propagator call.
	// 0 disables the periodic run; the forced check CBCheckFoundModel makes
	// under CheckSolutionInProp still runs it unless TurnoffSMS is set.
	Frequency int
	// Cutoff bounds the Minimality Checker's permutation search.
	Cutoff int

	// AssignmentCutoff is the Cube Emitter's score threshold; 0 disables
	// cube generation.
	AssignmentCutoff int
	AssignmentScoring cube.Scoring
	// AssignmentCutoffPrerun suppresses cube emission for this many
	// propagator calls after startup (§6's warmup window).
	AssignmentCutoffPrerun int
	// AssignmentCutoffPrerunTime suppresses cube emission for this long
	// after construction. Zero disables the time-based warmup.
	AssignmentCutoffPrerunTime time.Duration

	// Lookahead enables probing-based decisions over edge variables only;
	// LookaheadAll extends probing to every variable.
	Lookahead          bool
	LookaheadAll       bool
	LookaheadHeuristic lookahead.Heuristic

	// CheckSolutionInProp runs the checkers inside CBCheckFoundModel
	// rather than relying solely on the periodic propagation poll.
	CheckSolutionInProp bool

	// PropagateViaCore routes unit clauses produced by the checkers
	// through CBPropagate instead of the Clause Buffer (§9 callback ABI,
	// "propagateLiteralsCadical").
	PropagateViaCore bool

	// ForgettableClauses is the default tag for clauses the dispatch
	// pushes through the Clause Buffer when no more specific rule applies.
	// The Minimality Checker, Cube Emitter and AllModels blocking clauses
	// are always persistent per §4.3/§4.6 regardless of this flag, and they
	// are the only clauses the dispatch pushes, so the flag has no effect
	// on them.
	ForgettableClauses bool

	// TurnoffSMS disables the Minimality Checker entirely, leaving only
	// whatever the Cube Emitter and Lookahead Driver do (§8 boundary
	// case "turnoffSMS: the checker never runs, everything else does").
	TurnoffSMS bool

	// AllModels switches CBCheckFoundModel from "accept the first minimal
	// model and stop" to enumeration: every minimal model found is
	// counted, blocked with a persistent clause, and the search resumes
	// in place, until the instance is exhausted (§8 "Complete graph
	// enumeration").
	AllModels bool
}

// Stats are the simple integer counters of §9 ("no atomics needed in the
// single-threaded model").
type Stats struct {
	CallsPropagator int64
	CallsCheck      int64
	ClausesEmitted  int64
	CubesEmitted    int64
	ModelsAccepted  int64
	ModelsRejected  int64
}
