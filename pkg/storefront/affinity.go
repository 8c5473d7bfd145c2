package storefront

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// AffinityHistory is a category to interaction-count mapping that remembers
// the order in which categories were first recorded.
type AffinityHistory struct {
	order  []string
	counts map[string]int
}

// Count returns the number of interactions recorded for category.
func (h *AffinityHistory) Count(category string) int { return h.counts[category] }

// Categories returns categories in first-recorded order.
func (h *AffinityHistory) Categories() []string { return append([]string(nil), h.order...) }

// Len returns the number of distinct categories.
func (h *AffinityHistory) Len() int { return len(h.order) }

func (h *AffinityHistory) increment(category string) {
	if h.counts == nil {
		h.counts = make(map[string]int)
	}
	if _, ok := h.counts[category]; !ok {
		h.order = append(h.order, category)
	}
	h.counts[category]++
}

// Preferred returns the category with the highest count. Ties go to the
// category recorded first.
func (h *AffinityHistory) Preferred() (string, bool) {
	best, bestCount := "", 0
	for _, c := range h.order {
		if n := h.counts[c]; n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, bestCount > 0
}

// MarshalJSON writes a flat object whose keys follow first-recorded order.
func (h *AffinityHistory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range h.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", h.counts[c])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object of non-negative integer counts, keeping key order.
func (h *AffinityHistory) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("affinity history: expected object, got %v", tok)
	}

	next := AffinityHistory{counts: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("affinity history: count for %q: %w", key, err)
		}
		v, err := n.Int64()
		if err != nil || v < 0 {
			return fmt.Errorf("affinity history: invalid count %q for %q", n, key)
		}
		if _, seen := next.counts[key]; !seen {
			next.order = append(next.order, key)
		}
		next.counts[key] = int(v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("affinity history: trailing data")
	}

	*h = next
	return nil
}

// Tracker records category interactions and infers the visitor's preferred category.
// Every call reads the store afresh, so several trackers over one store see each
// other's writes. Concurrent writers in different processes may undercount.
type Tracker struct {
	mu     sync.Mutex
	store  AffinityStore
	logger *slog.Logger
}

// NewTracker creates a tracker over store. A nil logger discards load failures.
func NewTracker(store AffinityStore, logger *slog.Logger) *Tracker {
	return &Tracker{store: store, logger: logger}
}

// Record increments category and persists the whole history. Empty categories are ignored.
func (t *Tracker) Record(category string) error {
	if category == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.load()
	h.increment(category)

	data, err := h.MarshalJSON()
	if err != nil {
		return err
	}
	if err := t.store.Save(data); err != nil {
		return fmt.Errorf("storefront: save affinity history: %w", err)
	}
	return nil
}

// Preferred returns the most interacted-with category, false when the history is empty.
func (t *Tracker) Preferred() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.load()
	return h.Preferred()
}

// History returns a snapshot of the stored history.
func (t *Tracker) History() *AffinityHistory {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

// load never fails: unreadable or corrupt history counts as empty.
func (t *Tracker) load() *AffinityHistory {
	h := &AffinityHistory{}
	data, err := t.store.Load()
	if err != nil {
		t.warn("load affinity history", err)
		return h
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return h
	}
	if err := h.UnmarshalJSON(data); err != nil {
		t.warn("parse affinity history", err)
		return &AffinityHistory{}
	}
	return h
}

func (t *Tracker) warn(msg string, err error) {
	if t.logger != nil {
		t.logger.Warn(msg, "key", HistoryKey, "error", err)
	}
}
