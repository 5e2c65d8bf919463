package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionSeqKey = "quiz:session:seq"

// SessionIDs mints quiz session ids with INCR so every instance sharing the
// Redis server draws from one counter. The first call seeds the counter from
// the wall clock when the key is absent.
type SessionIDs struct {
	client *redis.Client
	clock  func() time.Time
}

func NewSessionIDs(client *redis.Client) *SessionIDs {
	return &SessionIDs{client: client, clock: time.Now}
}

func (s *SessionIDs) Next(ctx context.Context) (int64, error) {
	seed := s.clock().UnixMilli() * 1000
	if err := s.client.SetNX(ctx, sessionSeqKey, seed, 0).Err(); err != nil {
		return 0, fmt.Errorf("seed session counter: %w", err)
	}
	id, err := s.client.Incr(ctx, sessionSeqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("incr session counter: %w", err)
	}
	return id, nil
}
