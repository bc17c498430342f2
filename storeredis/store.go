// Package storeredis wraps any session.Store with a Redis read-through
// cache of the hot-path counters (NextSenderSeq/NextTargetSeq), so a
// session under heavy message flow doesn't hit the durable backing store
// (storepg, or any other session.Store) on every single field access.
// Grounded on cache/redis.go's RedisCache: same go-redis/v9 client and Lua
// script idiom, narrowed from a generic JSON object cache down to two
// integer counters that must invalidate precisely on every mutation.
package storeredis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Underlying is the durable store this package adds a cache in front of —
// session.Store's shape, accepted structurally so storeredis never imports
// the session package (avoiding an import cycle; session.Engine imports
// storeredis.Store, not the reverse).
type Underlying interface {
	Add(seq uint64, data []byte) error
	GetRange(begin, end uint64) ([][]byte, error)
	NextSenderSeq() (uint64, error)
	NextTargetSeq() (uint64, error)
	IncrementSender() error
	IncrementTarget() error
	Reset() error
}

// Store layers a Redis cache over an Underlying store.
type Store struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
	back      Underlying
}

// Open connects to addr and wraps back with a cache keyed by sessionID.
func Open(ctx context.Context, addr, sessionID string, back Underlying) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("storeredis: connect: %w", err)
	}
	return &Store{client: client, sessionID: sessionID, ttl: time.Hour, back: back}, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) senderKey() string { return "hotfix:seq:" + s.sessionID + ":sender" }
func (s *Store) targetKey() string { return "hotfix:seq:" + s.sessionID + ":target" }

func (s *Store) Add(seq uint64, data []byte) error {
	return s.back.Add(seq, data)
}

func (s *Store) GetRange(begin, end uint64) ([][]byte, error) {
	return s.back.GetRange(begin, end)
}

func (s *Store) NextSenderSeq() (uint64, error) {
	return s.cachedCounter(context.Background(), s.senderKey(), s.back.NextSenderSeq)
}

func (s *Store) NextTargetSeq() (uint64, error) {
	return s.cachedCounter(context.Background(), s.targetKey(), s.back.NextTargetSeq)
}

func (s *Store) cachedCounter(ctx context.Context, key string, load func() (uint64, error)) (uint64, error) {
	if v, err := s.client.Get(ctx, key).Result(); err == nil {
		if n, perr := strconv.ParseUint(v, 10, 64); perr == nil {
			return n, nil
		}
	}
	n, err := load()
	if err != nil {
		return 0, err
	}
	s.client.Set(ctx, key, strconv.FormatUint(n, 10), s.ttl)
	return n, nil
}

// setIfHigher is the storeredis analogue of cache/redis.go's
// "set_if_higher" Lua script: it keeps the cached counter from ever racing
// backwards if IncrementSender/IncrementTarget calls interleave with a
// concurrent cache read.
var setIfHigher = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
local new_value = tonumber(ARGV[1])
if not current or tonumber(current) < new_value then
	redis.call('SET', KEYS[1], ARGV[1])
	return 1
end
return 0
`)

func (s *Store) IncrementSender() error {
	if err := s.back.IncrementSender(); err != nil {
		return err
	}
	return s.refreshAfterIncrement(s.senderKey(), s.back.NextSenderSeq)
}

func (s *Store) IncrementTarget() error {
	if err := s.back.IncrementTarget(); err != nil {
		return err
	}
	return s.refreshAfterIncrement(s.targetKey(), s.back.NextTargetSeq)
}

func (s *Store) refreshAfterIncrement(key string, load func() (uint64, error)) error {
	n, err := load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := setIfHigher.Run(ctx, s.client, []string{key}, n).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *Store) Reset() error {
	if err := s.back.Reset(); err != nil {
		return err
	}
	ctx := context.Background()
	return s.client.Del(ctx, s.senderKey(), s.targetKey()).Err()
}
