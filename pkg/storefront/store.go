package storefront

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// HistoryKey is the storage key holding the serialized affinity history.
const HistoryKey = "search_history"

// AffinityStore is durable client storage for the affinity history.
// Load returns nil data when nothing was saved yet.
type AffinityStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// MemoryStore keeps the history in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStore) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

// BadgerStore persists the history in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a badger database in dir.
// An empty dir opens an in-memory database.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storefront: open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Load() ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(HistoryKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return data, err
}

func (b *BadgerStore) Save(data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(HistoryKey), data)
	})
}

// Close closes the underlying database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger's own logging to slog. Info and debug chatter is dropped.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...), "component", "badger")
}

func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...), "component", "badger")
}

func (l *badgerLogger) Infof(string, ...any)  {}
func (l *badgerLogger) Debugf(string, ...any) {}
