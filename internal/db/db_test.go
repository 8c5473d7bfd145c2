package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(_ context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForPing_EventuallyReady(t *testing.T) {
	p := &flakyPinger{failures: 2}
	if err := WaitForPing(context.Background(), p, 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestWaitForPing_Timeout(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	err := WaitForPing(context.Background(), p, 250*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout")
	}
	if err.Error() != "timeout waiting for backend: connection refused" {
		t.Errorf("error = %q", err.Error())
	}
}
