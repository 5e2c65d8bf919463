package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// HistoryStore keeps the append-only attempt log in history_quizzes. It talks
// to Postgres through pgx directly since it only runs hand-written aggregates.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

func (s *HistoryStore) SaveAll(ctx context.Context, rows []domain.HistoryRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(
				`INSERT INTO history_quizzes (user_id, session_id, answer_id, correct, created_at) VALUES ($1, $2, $3, $4, $5)`,
				r.UserID, r.SessionID, r.AnswerID, r.Correct, r.CreatedAt,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert history: %w", err)
			}
		}
		return br.Close()
	})
}

func (s *HistoryStore) DistinctSessionIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id FROM history_quizzes
		WHERE user_id = $1
		GROUP BY session_id
		ORDER BY MIN(id)`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *HistoryStore) CountCorrectBySession(ctx context.Context, sessionID int64) (int, error) {
	return s.count(ctx, sessionID, true)
}

func (s *HistoryStore) CountIncorrectBySession(ctx context.Context, sessionID int64) (int, error) {
	return s.count(ctx, sessionID, false)
}

func (s *HistoryStore) count(ctx context.Context, sessionID int64, correct bool) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM history_quizzes WHERE session_id = $1 AND correct = $2`,
		sessionID, correct).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

func (s *HistoryStore) LatestCreatedAtBySession(ctx context.Context, sessionID int64) (time.Time, error) {
	var latest *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT MAX(created_at) FROM history_quizzes WHERE session_id = $1`, sessionID).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && latest == nil) {
		return time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest history: %w", err)
	}
	return *latest, nil
}

func (s *HistoryStore) CorrectAnswerIDsBySession(ctx context.Context, sessionID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT answer_id FROM history_quizzes WHERE session_id = $1 AND correct ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list correct answers: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
