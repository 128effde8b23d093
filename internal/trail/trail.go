// Package trail implements the propagator's own decision-level trail
// (§3 "Trail"): an ordered sequence of levels, each an ordered list of
// variables that became known at that level.
package trail

// Trail mirrors the engine's notion of decision levels from the
// propagator's point of view. It is advanced by NewLevel and
// NotifyAssigned, and rewound by Backtrack.
type Trail struct {
	levels [][]int
}

// New returns a trail starting at decision level 0 with an empty level.
func New() *Trail {
	return &Trail{levels: [][]int{nil}}
}

// Level returns the current decision level (0-based), matching the engine's
// own decisionLevel().
func (t *Trail) Level() int {
	return len(t.levels) - 1
}

// NewLevel pushes an empty level, per notify_new_decision_level (§4.1).
func (t *Trail) NewLevel() {
	t.levels = append(t.levels, nil)
}

// NotifyAssigned appends variable v to the top level, per notify_assignment.
func (t *Trail) NotifyAssigned(v int) {
	top := len(t.levels) - 1
	t.levels[top] = append(t.levels[top], v)
}

// Backtrack pops levels until Level() == newLevel, per notify_backtrack
// (§4.1), and returns every variable that was popped in the process
// (across all popped levels, in pop order) so the caller can unassign
// them in the Truth Store.
func (t *Trail) Backtrack(newLevel int) []int {
	var popped []int
	for t.Level() > newLevel {
		top := len(t.levels) - 1
		popped = append(popped, t.levels[top]...)
		t.levels = t.levels[:top]
	}
	return popped
}

// NumAssigned returns the total number of variables recorded across all
// levels, the left side of the §8 trail-levels-sum invariant.
func (t *Trail) NumAssigned() int {
	n := 0
	for _, lvl := range t.levels {
		n += len(lvl)
	}
	return n
}

// LevelVars returns the variables assigned at the given decision level.
func (t *Trail) LevelVars(level int) []int {
	return t.levels[level]
}
