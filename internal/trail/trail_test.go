package trail

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTrailScenario(t *testing.T) {
	// Scripted sequence from spec scenario 4: notify_new_decision_level;
	// notify_assignment([1,2]); notify_new_decision_level;
	// notify_assignment([3]); notify_backtrack(1).
	tr := New()
	tr.NewLevel()
	tr.NotifyAssigned(1)
	tr.NotifyAssigned(2)
	tr.NewLevel()
	tr.NotifyAssigned(3)

	popped := tr.Backtrack(1)

	if diff := cmp.Diff([]int{3}, popped); diff != "" {
		t.Errorf("Backtrack popped mismatch (-want +got):\n%s", diff)
	}
	if tr.Level() != 1 {
		t.Errorf("Level() = %d, want 1", tr.Level())
	}
	if diff := cmp.Diff([]int{1, 2}, tr.LevelVars(1)); diff != "" {
		t.Errorf("LevelVars(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestTrailNumAssigned(t *testing.T) {
	tr := New()
	tr.NewLevel()
	tr.NotifyAssigned(0)
	tr.NewLevel()
	tr.NotifyAssigned(1)
	tr.NotifyAssigned(2)

	if got := tr.NumAssigned(); got != 3 {
		t.Errorf("NumAssigned() = %d, want 3", got)
	}
}
