package postgres

import (
	"context"
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

// QuizStore persists quizzes. Name uniqueness among live quizzes is enforced
// by the partial unique index quizzes_name_live_idx.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) FindByID(ctx context.Context, id int64) (domain.Quiz, error) {
	var m quizModel
	if err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Quiz{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *QuizStore) FindByName(ctx context.Context, name string) (domain.Quiz, error) {
	var m quizModel
	err := s.db.NewSelect().Model(&m).
		Where("lower(name) = lower(?)", name).
		Where("NOT is_deleted").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Quiz{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *QuizStore) Create(ctx context.Context, quiz *domain.Quiz) error {
	m := quizFrom(*quiz)
	if _, err := s.db.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
		return translate(err)
	}
	quiz.ID = m.ID
	return nil
}

func (s *QuizStore) Update(ctx context.Context, quiz *domain.Quiz) error {
	m := quizFrom(*quiz)
	return requireRow(s.db.NewUpdate().Model(&m).
		Column("name", "lesson_id", "is_deleted", "updated_by", "updated_at").
		WherePK().
		Exec(ctx))
}

func (s *QuizStore) SoftDelete(ctx context.Context, id int64, username string, at time.Time) error {
	return requireRow(s.db.NewUpdate().Model((*quizModel)(nil)).
		Set("is_deleted = TRUE").
		Set("updated_by = ?", username).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx))
}

func (s *QuizStore) FindAllByDeleted(ctx context.Context, deleted bool) ([]domain.Quiz, error) {
	var rows []quizModel
	if err := s.db.NewSelect().Model(&rows).Where("is_deleted = ?", deleted).Order("id").Scan(ctx); err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

type LessonStore struct {
	db *bun.DB
}

func NewLessonStore(db *bun.DB) *LessonStore {
	return &LessonStore{db: db}
}

func (s *LessonStore) FindByID(ctx context.Context, id int64) (domain.Lesson, error) {
	var m lessonModel
	if err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Lesson{}, translate(err)
	}
	return domain.Lesson{ID: m.ID, Name: m.Name, CourseID: m.CourseID}, nil
}

type CourseStore struct {
	db *bun.DB
}

func NewCourseStore(db *bun.DB) *CourseStore {
	return &CourseStore{db: db}
}

func (s *CourseStore) FindByID(ctx context.Context, id int64) (domain.Course, error) {
	var m courseModel
	if err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Course{}, translate(err)
	}
	return domain.Course{
		ID:          m.ID,
		Name:        m.Name,
		CategoryID:  m.CategoryID,
		Description: m.Description,
		IsDeleted:   m.IsDeleted,
	}, nil
}

type CategoryStore struct {
	db *bun.DB
}

func NewCategoryStore(db *bun.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) FindByID(ctx context.Context, id int64) (domain.Category, error) {
	var m categoryModel
	if err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Category{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *CategoryStore) FindByName(ctx context.Context, name string) (domain.Category, error) {
	var m categoryModel
	err := s.db.NewSelect().Model(&m).
		Where("lower(name) = lower(?)", name).
		Where("NOT is_deleted").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Category{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *CategoryStore) Create(ctx context.Context, category *domain.Category) error {
	m := categoryModel{Name: category.Name, IsDeleted: category.IsDeleted, auditColumns: auditFrom(category.Audit)}
	if _, err := s.db.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
		return translate(err)
	}
	category.ID = m.ID
	return nil
}

func (s *CategoryStore) Update(ctx context.Context, category *domain.Category) error {
	m := categoryModel{ID: category.ID, Name: category.Name, IsDeleted: category.IsDeleted, auditColumns: auditFrom(category.Audit)}
	return requireRow(s.db.NewUpdate().Model(&m).
		Column("name", "is_deleted", "updated_by", "updated_at").
		WherePK().
		Exec(ctx))
}

func (s *CategoryStore) FindAllByDeleted(ctx context.Context, deleted bool) ([]domain.Category, error) {
	var rows []categoryModel
	if err := s.db.NewSelect().Model(&rows).Where("is_deleted = ?", deleted).Order("id").Scan(ctx); err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}
