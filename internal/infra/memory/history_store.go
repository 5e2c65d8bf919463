package memory

import (
	"context"
	"sync"
	"time"

	"elearning-quiz-service/internal/domain"
)

// HistoryStore is an append-only in-memory attempt log.
type HistoryStore struct {
	mu   sync.RWMutex
	seq  int64
	rows []domain.HistoryRow
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) SaveAll(_ context.Context, rows []domain.HistoryRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.seq++
		r.ID = s.seq
		s.rows = append(s.rows, r)
	}
	return nil
}

// Rows returns a copy of every stored row in insertion order.
func (s *HistoryStore) Rows() []domain.HistoryRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HistoryRow(nil), s.rows...)
}

func (s *HistoryStore) DistinctSessionIDsByUser(_ context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]struct{})
	out := make([]int64, 0)
	for _, r := range s.rows {
		if r.UserID == nil || *r.UserID != userID {
			continue
		}
		if _, ok := seen[r.SessionID]; ok {
			continue
		}
		seen[r.SessionID] = struct{}{}
		out = append(out, r.SessionID)
	}
	return out, nil
}

func (s *HistoryStore) CountCorrectBySession(_ context.Context, sessionID int64) (int, error) {
	return s.count(sessionID, true), nil
}

func (s *HistoryStore) CountIncorrectBySession(_ context.Context, sessionID int64) (int, error) {
	return s.count(sessionID, false), nil
}

func (s *HistoryStore) count(sessionID int64, correct bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.rows {
		if r.SessionID == sessionID && r.Correct == correct {
			n++
		}
	}
	return n
}

func (s *HistoryStore) LatestCreatedAtBySession(_ context.Context, sessionID int64) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest time.Time
	found := false
	for _, r := range s.rows {
		if r.SessionID == sessionID && (!found || r.CreatedAt.After(latest)) {
			latest = r.CreatedAt
			found = true
		}
	}
	if !found {
		return time.Time{}, domain.ErrNotFound
	}
	return latest, nil
}

func (s *HistoryStore) CorrectAnswerIDsBySession(_ context.Context, sessionID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0)
	for _, r := range s.rows {
		if r.SessionID == sessionID && r.Correct {
			out = append(out, r.AnswerID)
		}
	}
	return out, nil
}
