package presence

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LastSeenStore remembers when each tracked user was last on the network.
type LastSeenStore interface {
	Set(ctx context.Context, userID uuid.UUID, at time.Time) error
	Get(ctx context.Context, userID uuid.UUID) (time.Time, bool, error)
}

type MemoryLastSeen struct {
	mu   sync.Mutex
	seen map[uuid.UUID]time.Time
}

func NewMemoryLastSeen() *MemoryLastSeen {
	return &MemoryLastSeen{seen: make(map[uuid.UUID]time.Time)}
}

func (m *MemoryLastSeen) Set(_ context.Context, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[userID] = at
	return nil
}

func (m *MemoryLastSeen) Get(_ context.Context, userID uuid.UUID) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.seen[userID]
	return at, ok, nil
}

const lastSeenKey = "presence:last_seen"

// RedisLastSeen keeps the timestamps in one hash so they survive restarts
// and can be shared by several trackers.
type RedisLastSeen struct {
	client *redis.Client
	key    string
}

func NewRedisLastSeen(client *redis.Client) *RedisLastSeen {
	return &RedisLastSeen{client: client, key: lastSeenKey}
}

func (r *RedisLastSeen) Set(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.client.HSet(ctx, r.key, userID.String(), at.UTC().UnixNano()).Err()
}

func (r *RedisLastSeen) Get(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	v, err := r.client.HGet(ctx, r.key, userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, n).UTC(), true, nil
}
