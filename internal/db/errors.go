package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrQueueEmpty    = errors.New("db: queue empty")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op names for error context.
const (
	OpCreateIndex = "index.create"
	OpDeleteIndex = "index.delete"
	OpIndexExists = "index.exists"
	OpSearch      = "search"
	OpUpsert      = "upsert"
	OpPing        = "ping"
	OpRPop        = "RPOP"
	OpLPush       = "LPUSH"
	OpLLen        = "LLEN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
