package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

// Pop removes the oldest payload from the list at key (RPOP, producers LPUSH).
func (s *Store) Pop(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Rpop().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrQueueEmpty
		}
		return nil, &db.Error{Op: db.OpRPop, Err: err}
	}
	return data, nil
}

// Push enqueues payloads at the head of the list at key.
func (s *Store) Push(ctx context.Context, key string, payloads ...[]byte) error {
	if len(payloads) == 0 {
		return nil
	}
	elems := make([]string, len(payloads))
	for i, p := range payloads {
		elems[i] = string(p)
	}
	cmd := s.b().Lpush().Key(key).Element(elems...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	return nil
}

// Len returns the number of pending payloads.
func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return n, nil
}
