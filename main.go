package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/smsgraph/sms/internal/cube"
	"github.com/smsgraph/sms/internal/cubebatch"
	"github.com/smsgraph/sms/internal/cubefile"
	"github.com/smsgraph/sms/internal/interrupt"
	"github.com/smsgraph/sms/internal/lookahead"
	"github.com/smsgraph/sms/internal/parsers"
	"github.com/smsgraph/sms/internal/sat"
	"github.com/smsgraph/sms/internal/sms"
)

var (
	flagCPUProfile = flag.Bool("cpuprof", false, "save pprof CPU profile in cpuprof")
	flagMemProfile = flag.Bool("memprof", false, "save pprof memory profile in memprof")

	flagVertices = flag.Int("vertices", 2, "graph size (number of vertices)")
	flagDirected = flag.Bool("directed", false, "treat edge variables as directed adjacency")

	flagFrequency = flag.Int("frequency", 20, "run the minimality check every N propagator calls")
	flagCutoff    = flag.Int("cutoff", 0, "maximum number of recursive calls per minimality check (0: unbounded)")

	flagAssignmentCutoff           = flag.Int("assignmentCutoff", 0, "cube-emission score threshold (0: disabled)")
	flagAssignmentScoring          = flag.String("assignmentScoring", "unweighted", "cube score: \"unweighted\" or \"weighted\"")
	flagAssignmentCutoffPrerun     = flag.Int("assignmentCutoffPrerun", 0, "suppress cube emission for this many propagator calls at startup")
	flagAssignmentCutoffPrerunTime = flag.Duration("assignmentCutoffPrerunTime", 0, "suppress cube emission for this long at startup")

	flagLookahead          = flag.Bool("lookahead", false, "enable lookahead (probing) decisions over edge variables")
	flagLookaheadAll       = flag.Bool("lookaheadAll", false, "extend lookahead probing to every variable, not just edges")
	flagLookaheadHeuristic = flag.Int("lookaheadHeuristic", int(lookahead.HeuristicProduct), "lookahead probe-scoring heuristic")

	flagCheckSolutionInProp      = flag.Bool("checkSolutionInProp", false, "run checkers inside the model-accept callback")
	flagPropagateLiteralsCadical = flag.Bool("propagateLiteralsCadical", false, "route checker-derived unit clauses through cb_propagate")
	flagForgettableClauses       = flag.Bool("forgettableClauses", false, "default tag for propagator-pushed clauses (minimality, cube and model-blocking clauses are always persistent)")
	flagTurnoffSMS               = flag.Bool("turnoffSMS", false, "disable symmetry breaking entirely")
	flagAllModels                = flag.Bool("allModels", false, "enumerate every minimal model instead of stopping at the first")

	flagTimeout = flag.Duration("timeout", 0, "per-cube wall-clock timeout (0: unbounded)")

	flagCubeFile = flag.String("cubeFile", "", "assumption/cube file driving the outer bound loop")
	flagFromBound = flag.Int("fromBound", 0, "first bound (inclusive) to solve from cubeFile")
	flagToBound   = flag.Int("toBound", -1, "last bound (inclusive) to solve from cubeFile (-1: last line)")
	flagCubeOut   = flag.String("cubeOut", "", "file to append emitted cubes to (default: stdout)")
	flagGzipped   = flag.Bool("gzipped", false, "instance and cube files are gzip-compressed")

	flagAddedClausesLog    = flag.String("addedClausesLog", "", "file to append persistent (blocking/added) clauses to")
	flagLearnedClausesLog  = flag.String("learnedClausesLog", "", "file to write the final learnt clause database to")
	flagSymmetryClausesLog = flag.String("symmetryClausesLog", "", "file to append symmetry-breaking clauses to")
	flagSimplifiedCNFLog   = flag.String("simplifiedCNFLog", "", "file to write the simplified root-level CNF to")
)

type config struct {
	instanceFile string
	cpuProfile   bool
	memProfile   bool

	vertices int
	directed bool

	frequency int
	cutoff    int

	assignmentCutoff           int
	assignmentScoring          cube.Scoring
	assignmentCutoffPrerun     int
	assignmentCutoffPrerunTime time.Duration

	lookahead          bool
	lookaheadAll       bool
	lookaheadHeuristic lookahead.Heuristic

	checkSolutionInProp      bool
	propagateLiteralsCadical bool
	forgettableClauses       bool
	turnoffSMS               bool
	allModels                bool

	timeout time.Duration

	cubeFile  string
	fromBound int
	toBound   int
	cubeOut   string
	gzipped   bool

	addedClausesLog    string
	learnedClausesLog  string
	symmetryClausesLog string
	simplifiedCNFLog   string
}

func parseScoring(s string) (cube.Scoring, error) {
	switch s {
	case "unweighted", "":
		return cube.ScoringCountAssigned, nil
	case "weighted":
		return cube.ScoringCountAssignedWeighted, nil
	default:
		return 0, fmt.Errorf("unknown assignmentScoring %q", s)
	}
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	if *flagVertices < 2 {
		return nil, fmt.Errorf("vertices must be >= 2, got %d", *flagVertices)
	}
	scoring, err := parseScoring(*flagAssignmentScoring)
	if err != nil {
		return nil, err
	}

	return &config{
		instanceFile: flag.Arg(0),
		cpuProfile:   *flagCPUProfile,
		memProfile:   *flagMemProfile,

		vertices: *flagVertices,
		directed: *flagDirected,

		frequency: *flagFrequency,
		cutoff:    *flagCutoff,

		assignmentCutoff:           *flagAssignmentCutoff,
		assignmentScoring:          scoring,
		assignmentCutoffPrerun:     *flagAssignmentCutoffPrerun,
		assignmentCutoffPrerunTime: *flagAssignmentCutoffPrerunTime,

		lookahead:          *flagLookahead,
		lookaheadAll:       *flagLookaheadAll,
		lookaheadHeuristic: lookahead.Heuristic(*flagLookaheadHeuristic),

		checkSolutionInProp:      *flagCheckSolutionInProp,
		propagateLiteralsCadical: *flagPropagateLiteralsCadical,
		forgettableClauses:       *flagForgettableClauses,
		turnoffSMS:               *flagTurnoffSMS,
		allModels:                *flagAllModels,

		timeout: *flagTimeout,

		cubeFile:  *flagCubeFile,
		fromBound: *flagFromBound,
		toBound:   *flagToBound,
		cubeOut:   *flagCubeOut,
		gzipped:   *flagGzipped,

		addedClausesLog:    *flagAddedClausesLog,
		learnedClausesLog:  *flagLearnedClausesLog,
		symmetryClausesLog: *flagSymmetryClausesLog,
		simplifiedCNFLog:   *flagSimplifiedCNFLog,
	}, nil
}

func (cfg *config) smsConfig() sms.Config {
	return sms.Config{
		Vertices:                   cfg.vertices,
		Directed:                   cfg.directed,
		Frequency:                  cfg.frequency,
		Cutoff:                     cfg.cutoff,
		AssignmentCutoff:           cfg.assignmentCutoff,
		AssignmentScoring:          cfg.assignmentScoring,
		AssignmentCutoffPrerun:     cfg.assignmentCutoffPrerun,
		AssignmentCutoffPrerunTime: cfg.assignmentCutoffPrerunTime,
		Lookahead:                  cfg.lookahead,
		LookaheadAll:               cfg.lookaheadAll,
		LookaheadHeuristic:         cfg.lookaheadHeuristic,
		CheckSolutionInProp:        cfg.checkSolutionInProp,
		PropagateViaCore:           cfg.propagateLiteralsCadical,
		ForgettableClauses:         cfg.forgettableClauses,
		TurnoffSMS:                 cfg.turnoffSMS,
		AllModels:                  cfg.allModels,
	}
}

type nopCloser struct{ w io.Writer }

func (n nopCloser) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n nopCloser) Close() error                { return nil }

// cubeOutWriter opens the configured cube-output sink, or stdout if none
// was given.
func cubeOutWriter(cfg *config) (io.WriteCloser, error) {
	if cfg.cubeOut == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.OpenFile(cfg.cubeOut, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open cubeOut %q: %w", cfg.cubeOut, err)
	}
	return f, nil
}

// newAttachedSolver loads the CNF at cfg.instanceFile into a fresh solver
// and, unless SMS is disabled (turnoffSMS, or vertices == 2 per §8's
// boundary case), attaches a new Propagator built from cfg. The engine's
// variables are created by the CNF's own problem line; the Propagator is
// attached only afterwards, so Attach's growth loop covers any non-edge
// auxiliary variables the CNF declares beyond the graph's edge variables.
// The returned Propagator is nil when SMS is disabled.
func newAttachedSolver(ctx context.Context, cfg *config, cubeOut io.Writer) (*sat.Solver, *sms.Propagator, error) {
	s := sat.NewDefaultSolver()
	s.SetContext(ctx)

	if err := parsers.LoadDIMACS(cfg.instanceFile, cfg.gzipped, s, nil); err != nil {
		return nil, nil, fmt.Errorf("could not parse instance: %w", err)
	}

	var p *sms.Propagator
	if !cfg.turnoffSMS && cfg.vertices > 2 {
		p = sms.New(cfg.smsConfig(), cubeOut)
		if cfg.symmetryClausesLog != "" {
			f, err := os.OpenFile(cfg.symmetryClausesLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("could not open symmetryClausesLog %q: %w", cfg.symmetryClausesLog, err)
			}
			p.SymmetryLog = f
		}
		p.Attach(s)
	}

	return s, p, nil
}

// negate returns the clause blocking cube c: the disjunction of the
// opposite of each of its literals.
func negate(c cubefile.Cube) []sat.Literal {
	out := make([]sat.Literal, len(c.Literals))
	for i, l := range c.Literals {
		out[i] = l.Opposite()
	}
	return out
}

func appendClauseLog(path string, clause []sat.Literal) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, l := range clause {
		if _, err := fmt.Fprintf(f, "%d ", l.DIMACS()); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(f, "0")
	return err
}

func writeClausesFile(path string, dump func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dump(f)
}

// runPlain runs a single solve of the whole instance with no outer cube
// loop: the common case when cfg.cubeFile is empty.
func runPlain(ctx context.Context, cfg *config) (sat.LBool, error) {
	out, err := cubeOutWriter(cfg)
	if err != nil {
		return sat.Unknown, err
	}
	defer out.Close()

	s, p, err := newAttachedSolver(ctx, cfg, out)
	if err != nil {
		return sat.Unknown, err
	}

	status := s.Solve()

	if cfg.allModels && p != nil {
		fmt.Printf("c models %d\n", p.Stats.ModelsAccepted)
	}

	if cfg.learnedClausesLog != "" {
		if err := writeClausesFile(cfg.learnedClausesLog, s.WriteLearnedClauses); err != nil {
			return status, err
		}
	}
	if cfg.simplifiedCNFLog != "" {
		if err := writeClausesFile(cfg.simplifiedCNFLog, s.WriteDIMACS); err != nil {
			return status, err
		}
	}

	return status, nil
}

// solveBound solves the instance augmented with bound's literals (as
// persistent unit clauses) and every blocking clause in blocked, on a
// fresh solver and propagator.
func solveBound(ctx context.Context, cfg *config, bound cubefile.Cube, blocked [][]sat.Literal, cubeOut io.Writer) (sat.LBool, error) {
	s, _, err := newAttachedSolver(ctx, cfg, cubeOut)
	if err != nil {
		return sat.Unknown, err
	}
	for _, clause := range blocked {
		if err := s.AddClause(clause); err != nil {
			return sat.Unknown, err
		}
	}
	for _, l := range bound.Literals {
		if err := s.AddClause([]sat.Literal{l}); err != nil {
			return sat.Unknown, err
		}
	}
	return s.Solve(), nil
}

// runCubes implements the outer block-then-solve loop of §6/§8 scenario
// 6. Bounds outside [fromBound, toBound] are blocked: their cube's
// negation is recorded, and per the Open Question of §9 the block pass
// is treated as fully preceding the solve pass. Bounds inside the range
// are each solved independently: internal/sat.Solver has no retractable
// assumption mode (see AddIncrementalClause's doc comment), so each
// bound gets its own fresh solver seeded with the same CNF, every
// blocked bound's negation, and that bound's own literals, all as
// persistent unit/blocking clauses.
func runCubes(ctx context.Context, cfg *config) (sat.LBool, error) {
	cubes, err := cubefile.Read(cfg.cubeFile, cfg.gzipped)
	if err != nil {
		return sat.Unknown, fmt.Errorf("could not read cube file: %w", err)
	}

	probe := sat.NewDefaultSolver()
	if err := parsers.LoadDIMACS(cfg.instanceFile, cfg.gzipped, probe, nil); err != nil {
		return sat.Unknown, fmt.Errorf("could not parse instance: %w", err)
	}
	if err := cubebatch.Validate(ctx, cubes, probe.NumVariables()); err != nil {
		return sat.Unknown, fmt.Errorf("malformed cube file: %w", err)
	}

	toBound := cfg.toBound
	if toBound < 0 || toBound >= len(cubes) {
		toBound = len(cubes) - 1
	}

	var blocked [][]sat.Literal
	for i, c := range cubes {
		if i < cfg.fromBound || i > toBound {
			clause := negate(c)
			blocked = append(blocked, clause)
			if err := appendClauseLog(cfg.addedClausesLog, clause); err != nil {
				return sat.Unknown, err
			}
		}
	}

	out, err := cubeOutWriter(cfg)
	if err != nil {
		return sat.Unknown, err
	}
	defer out.Close()

	status := sat.False
	for i := cfg.fromBound; i <= toBound; i++ {
		boundCtx, cancel := interrupt.Deadline(ctx, cfg.timeout)
		result, err := solveBound(boundCtx, cfg, cubes[i], blocked, out)
		cancel()
		if err != nil {
			return sat.Unknown, err
		}
		if result == sat.True {
			return sat.True, nil
		}
		if result == sat.Unknown {
			status = sat.Unknown
		}
	}
	return status, nil
}

func run(ctx context.Context, cfg *config) (sat.LBool, error) {
	if cfg.cubeFile != "" {
		return runCubes(ctx, cfg)
	}
	return runPlain(ctx, cfg)
}

func statusLine(status sat.LBool) (string, int) {
	switch status {
	case sat.True:
		return "SATISFIABLE", 10
	case sat.False:
		return "UNSATISFIABLE", 20
	default:
		return "INDETERMINATE", 0
	}
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := interrupt.Notify(context.Background())
	defer stop()
	if cfg.cubeFile == "" && cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = interrupt.Deadline(ctx, cfg.timeout)
		defer cancel()
	}

	status, err := run(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	line, code := statusLine(status)
	fmt.Println(line)

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}

	os.Exit(code)
}
