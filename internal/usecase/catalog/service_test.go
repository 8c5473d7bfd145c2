package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// --- Mocks ---

type mockIndex struct {
	upsertFn func(ctx context.Context, p *domain.Product) (bool, error)
	ensureFn func(ctx context.Context) (bool, error)
	resetFn  func(ctx context.Context) error

	upserted []domain.Product
	resets   int
}

func (m *mockIndex) Upsert(ctx context.Context, p *domain.Product) (bool, error) {
	if m.upsertFn != nil {
		created, err := m.upsertFn(ctx, p)
		if err == nil {
			m.upserted = append(m.upserted, *p)
		}
		return created, err
	}
	m.upserted = append(m.upserted, *p)
	return true, nil
}

func (m *mockIndex) EnsureIndex(ctx context.Context) (bool, error) {
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return true, nil
}

func (m *mockIndex) Reset(ctx context.Context) error {
	m.resets++
	if m.resetFn != nil {
		return m.resetFn(ctx)
	}
	return nil
}

type mockQueue struct {
	payloads [][]byte
	err      error
	errAfter int
	pops     int
}

func (m *mockQueue) Next(_ context.Context) ([]byte, bool, error) {
	if m.err != nil && m.pops >= m.errAfter {
		return nil, false, m.err
	}
	if len(m.payloads) == 0 {
		return nil, false, nil
	}
	m.pops++
	p := m.payloads[0]
	m.payloads = m.payloads[1:]
	return p, true, nil
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(idx *mockIndex, q SyncQueue) *Service {
	return New(idx, q, zap.NewNop()).WithClock(func() time.Time { return fixedNow })
}

// --- Tests ---

func TestUpsert_Created(t *testing.T) {
	idx := &mockIndex{}
	svc := newTestService(idx, nil)

	res, err := svc.Upsert(context.Background(), &domain.Product{ID: "1", Name: "Tee", Price: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != Created {
		t.Errorf("result = %q, want %q", res, Created)
	}
	if len(idx.upserted) != 1 {
		t.Fatalf("upserted = %d", len(idx.upserted))
	}
	if got := idx.upserted[0].UpdatedAt; got == nil || !got.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want %v", got, fixedNow)
	}
}

func TestUpsert_Updated(t *testing.T) {
	idx := &mockIndex{upsertFn: func(context.Context, *domain.Product) (bool, error) { return false, nil }}
	res, err := newTestService(idx, nil).Upsert(context.Background(), &domain.Product{ID: "1", Name: "Tee"})
	if err != nil || res != Updated {
		t.Errorf("Upsert = %q, %v; want updated", res, err)
	}
}

func TestUpsert_Invalid(t *testing.T) {
	idx := &mockIndex{}
	_, err := newTestService(idx, nil).Upsert(context.Background(), &domain.Product{ID: "1"})
	if !errors.Is(err, domain.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
	if len(idx.upserted) != 0 {
		t.Error("invalid product must not be indexed")
	}
}

func TestUpsert_IndexError(t *testing.T) {
	idx := &mockIndex{upsertFn: func(context.Context, *domain.Product) (bool, error) {
		return false, domain.NewIndexError("", "connection refused")
	}}
	_, err := newTestService(idx, nil).Upsert(context.Background(), &domain.Product{ID: "1", Name: "Tee"})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestDrain_SkipsMalformed(t *testing.T) {
	idx := &mockIndex{}
	q := &mockQueue{payloads: [][]byte{
		[]byte(`{"id":"1","name":"Tee","price":100}`),
		[]byte(`not json`),
		[]byte(`{"id":"2"}`),
		[]byte(`{"id":"3","name":"Parka","price":12800,"isSale":true}`),
	}}

	names, err := newTestService(idx, q).Drain(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Tee", "Parka"}) {
		t.Errorf("names = %v", names)
	}
	if len(idx.upserted) != 2 || !idx.upserted[1].IsSale {
		t.Errorf("upserted = %+v", idx.upserted)
	}
}

func TestDrain_Empty(t *testing.T) {
	names, err := newTestService(&mockIndex{}, &mockQueue{}).Drain(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("names = %#v, want empty non-nil", names)
	}
}

func TestDrain_IndexErrorStops(t *testing.T) {
	calls := 0
	idx := &mockIndex{upsertFn: func(context.Context, *domain.Product) (bool, error) {
		calls++
		if calls == 2 {
			return false, errors.New("index down")
		}
		return true, nil
	}}
	q := &mockQueue{payloads: [][]byte{
		[]byte(`{"id":"1","name":"A"}`),
		[]byte(`{"id":"2","name":"B"}`),
		[]byte(`{"id":"3","name":"C"}`),
	}}

	names, err := newTestService(idx, q).Drain(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(names, []string{"A"}) {
		t.Errorf("names = %v, want [A]", names)
	}
	if len(q.payloads) != 1 {
		t.Errorf("remaining = %d, want 1", len(q.payloads))
	}
}

func TestDrain_QueueError(t *testing.T) {
	q := &mockQueue{
		payloads: [][]byte{[]byte(`{"id":"1","name":"A"}`)},
		err:      domain.ErrQueueUnavailable,
		errAfter: 1,
	}
	names, err := newTestService(&mockIndex{}, q).Drain(context.Background())
	if !errors.Is(err, domain.ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
	if !reflect.DeepEqual(names, []string{"A"}) {
		t.Errorf("names = %v", names)
	}
}

func TestDrain_NoQueue(t *testing.T) {
	_, err := newTestService(&mockIndex{}, nil).Drain(context.Background())
	if !errors.Is(err, domain.ErrQueueUnavailable) {
		t.Errorf("expected ErrQueueUnavailable, got %v", err)
	}
}

func TestDrain_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := &mockQueue{payloads: [][]byte{[]byte(`{"id":"1","name":"A"}`)}}
	_, err := newTestService(&mockIndex{}, q).Drain(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	idx := &mockIndex{}
	n, err := newTestService(idx, nil).Seed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 || len(idx.upserted) != 5 {
		t.Errorf("seeded %d, upserted %d; want 5", n, len(idx.upserted))
	}
	if idx.resets != 1 {
		t.Errorf("resets = %d, want 1", idx.resets)
	}
	if idx.upserted[0].ID != "101" {
		t.Errorf("first id = %s", idx.upserted[0].ID)
	}
}

func TestSeed_ResetError(t *testing.T) {
	idx := &mockIndex{resetFn: func(context.Context) error { return errors.New("boom") }}
	if _, err := newTestService(idx, nil).Seed(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(idx.upserted) != 0 {
		t.Error("nothing should be indexed after a failed reset")
	}
}

func TestEnsureIndex(t *testing.T) {
	idx := &mockIndex{ensureFn: func(context.Context) (bool, error) { return false, nil }}
	if err := newTestService(idx, nil).EnsureIndex(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	idx.ensureFn = func(context.Context) (bool, error) { return false, errors.New("boom") }
	if err := newTestService(idx, nil).EnsureIndex(context.Background()); err == nil {
		t.Error("expected error")
	}
}
