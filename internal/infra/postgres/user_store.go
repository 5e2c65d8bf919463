package postgres

import (
	"context"

	"elearning-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var m userModel
	if err := s.db.NewSelect().Model(&m).Where("username = ?", username).Scan(ctx); err != nil {
		return domain.User{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var m userModel
	if err := s.db.NewSelect().Model(&m).Where("lower(email) = lower(?)", email).Scan(ctx); err != nil {
		return domain.User{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	m := userFrom(*user)
	if _, err := s.db.NewInsert().Model(&m).Returning("id, created_at, updated_at").Exec(ctx); err != nil {
		return translate(err)
	}
	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	m := userFrom(*user)
	return requireRow(s.db.NewUpdate().Model(&m).
		Column("email", "password", "full_name", "phone", "gender", "status", "role", "updated_at").
		WherePK().
		Exec(ctx))
}
