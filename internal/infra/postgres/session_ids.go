package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// SessionIDs draws quiz session ids from the quiz_session_seq sequence.
type SessionIDs struct {
	db *bun.DB
}

func NewSessionIDs(db *bun.DB) *SessionIDs {
	return &SessionIDs{db: db}
}

func (s *SessionIDs) Next(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.NewSelect().ColumnExpr("nextval('quiz_session_seq')").Scan(ctx, &id); err != nil {
		return 0, fmt.Errorf("next session id: %w", err)
	}
	return id, nil
}
