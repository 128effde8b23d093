package interrupt

import (
	"context"
	"testing"
	"time"
)

func TestDeadlineDisabledForNonPositiveDuration(t *testing.T) {
	parent := context.Background()
	ctx, cancel := Deadline(parent, 0)
	defer cancel()
	if ctx != parent {
		t.Errorf("Deadline(0) should return the parent context unchanged")
	}
}

func TestDeadlineCancelsAfterDuration(t *testing.T) {
	ctx, cancel := Deadline(context.Background(), 10*time.Millisecond)
	defer cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("context was not canceled within the deadline")
	}
}

func TestNotifyReturnsLiveContextByDefault(t *testing.T) {
	ctx, stop := Notify(context.Background())
	defer stop()
	select {
	case <-ctx.Done():
		t.Fatalf("context canceled without a signal")
	default:
	}
}
