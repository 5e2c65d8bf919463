package memory

import (
	"context"
	"sync/atomic"
	"time"
)

// SessionIDs is an in-process quiz session id generator. The counter is seeded
// from the wall clock so a restarted process keeps issuing ids above the ones
// already recorded in history.
type SessionIDs struct {
	last atomic.Int64
}

func NewSessionIDs() *SessionIDs {
	return NewSessionIDsFrom(SeedFromClock(time.Now()))
}

// NewSessionIDsFrom starts the counter after seed.
func NewSessionIDsFrom(seed int64) *SessionIDs {
	s := &SessionIDs{}
	s.last.Store(seed)
	return s
}

func (s *SessionIDs) Next(context.Context) (int64, error) {
	return s.last.Add(1), nil
}

// SeedFromClock leaves room for a thousand ids per millisecond.
func SeedFromClock(now time.Time) int64 {
	return now.UnixMilli() * 1000
}
