package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[CheckIndex] != CheckOK {
		t.Errorf("expected index %q, got %q", CheckOK, r.Checks[CheckIndex])
	}
	if r.Checks[CheckQueue] != CheckOK {
		t.Errorf("expected queue %q, got %q", CheckOK, r.Checks[CheckQueue])
	}
}

func TestCheck_IndexError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckIndex] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks[CheckIndex])
	}
}

func TestCheck_QueueError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckQueue] != CheckError {
		t.Errorf("expected queue %q, got %q", CheckError, r.Checks[CheckQueue])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("index down")}, &mockPinger{err: errors.New("queue down")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoQueue(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[CheckQueue]; ok {
		t.Error("queue check should be absent when queue is nil")
	}
}

func TestCheck_NoQueue_IndexError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}
