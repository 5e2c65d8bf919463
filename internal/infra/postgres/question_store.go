package postgres

import (
	"context"
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type QuestionStore struct {
	db *bun.DB
}

func NewQuestionStore(db *bun.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func liveAnswers(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("NOT is_deleted").Order("id")
}

func (s *QuestionStore) FindByID(ctx context.Context, id int64) (domain.Question, error) {
	var m questionModel
	err := s.db.NewSelect().Model(&m).
		Relation("Answers", liveAnswers).
		Where("qs.id = ?", id).
		Scan(ctx)
	if err != nil {
		return domain.Question{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *QuestionStore) FindByQuizAndOrdinal(ctx context.Context, quizID int64, ord int) (domain.Question, error) {
	var m questionModel
	err := s.db.NewSelect().Model(&m).
		Relation("Answers", liveAnswers).
		Where("qs.quiz_id = ?", quizID).
		Where("qs.ord_question = ?", ord).
		Where("NOT qs.is_deleted").
		Scan(ctx)
	if err != nil {
		return domain.Question{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *QuestionStore) CountByQuiz(ctx context.Context, quizID int64) (int, error) {
	n, err := s.db.NewSelect().Model((*questionModel)(nil)).
		Where("quiz_id = ?", quizID).
		Where("NOT is_deleted").
		Count(ctx)
	return n, translate(err)
}

func (s *QuestionStore) FindAllByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	var rows []questionModel
	err := s.db.NewSelect().Model(&rows).
		Relation("Answers", liveAnswers).
		Where("qs.quiz_id = ?", quizID).
		Where("NOT qs.is_deleted").
		Order("qs.ord_question").
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// CreateWithAnswers locks the parent quiz row so concurrent inserts into the
// same quiz get distinct ordinals.
func (s *QuestionStore) CreateWithAnswers(ctx context.Context, question *domain.Question) error {
	return translate(s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockQuiz(ctx, tx, question.QuizID); err != nil {
			return err
		}
		var maxOrd int
		if err := tx.NewSelect().Model((*questionModel)(nil)).
			ColumnExpr("COALESCE(MAX(ord_question), 0)").
			Where("quiz_id = ?", question.QuizID).
			Where("NOT is_deleted").
			Scan(ctx, &maxOrd); err != nil {
			return err
		}

		m := questionModel{
			QuizID:       question.QuizID,
			Ord:          maxOrd + 1,
			Type:         string(question.Type),
			Name:         question.Name,
			auditColumns: auditFrom(question.Audit),
		}
		if _, err := tx.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
			return err
		}
		question.ID = m.ID
		question.Ord = m.Ord

		if len(question.Answers) == 0 {
			return nil
		}
		answers := make([]answerModel, 0, len(question.Answers))
		for _, a := range question.Answers {
			a.QuestionID = m.ID
			answers = append(answers, answerFrom(a))
		}
		if _, err := tx.NewInsert().Model(&answers).Returning("id").Exec(ctx); err != nil {
			return err
		}
		for i := range question.Answers {
			question.Answers[i].ID = answers[i].ID
			question.Answers[i].QuestionID = m.ID
		}
		return nil
	}))
}

// SoftDelete marks the question deleted and closes the gap it leaves: live
// questions after it in the same quiz move down by one ordinal. Runs under the
// same quiz lock as CreateWithAnswers.
func (s *QuestionStore) SoftDelete(ctx context.Context, id int64, username string, at time.Time) error {
	return translate(s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var quizID int64
		if err := tx.NewSelect().Model((*questionModel)(nil)).
			Column("quiz_id").
			Where("id = ?", id).
			Scan(ctx, &quizID); err != nil {
			return err
		}
		if err := lockQuiz(ctx, tx, quizID); err != nil {
			return err
		}

		var current questionModel
		if err := tx.NewSelect().Model(&current).
			Column("ord_question", "is_deleted").
			Where("id = ?", id).
			Scan(ctx); err != nil {
			return err
		}
		if err := requireRow(tx.NewUpdate().Model((*questionModel)(nil)).
			Set("is_deleted = TRUE").
			Set("updated_by = ?", username).
			Set("updated_at = ?", at).
			Where("id = ?", id).
			Exec(ctx)); err != nil {
			return err
		}
		if current.IsDeleted {
			return nil
		}

		// Two passes keep every intermediate row unique on (quiz_id, ord_question).
		if _, err := tx.NewUpdate().Model((*questionModel)(nil)).
			Set("ord_question = -ord_question").
			Where("quiz_id = ?", quizID).
			Where("ord_question > ?", current.Ord).
			Where("NOT is_deleted").
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().Model((*questionModel)(nil)).
			Set("ord_question = -ord_question - 1").
			Where("quiz_id = ?", quizID).
			Where("ord_question < 0").
			Where("NOT is_deleted").
			Exec(ctx)
		return err
	}))
}

func lockQuiz(ctx context.Context, tx bun.Tx, quizID int64) error {
	return tx.NewSelect().Model((*quizModel)(nil)).
		Column("id").
		Where("id = ?", quizID).
		For("UPDATE").
		Scan(ctx, new(int64))
}

type AnswerStore struct {
	db *bun.DB
}

func NewAnswerStore(db *bun.DB) *AnswerStore {
	return &AnswerStore{db: db}
}

func (s *AnswerStore) IsCorrect(ctx context.Context, id int64) (bool, error) {
	var correct bool
	err := s.db.NewSelect().Model((*answerModel)(nil)).
		Column("correct").
		Where("id = ?", id).
		Where("NOT is_deleted").
		Scan(ctx, &correct)
	return correct, translate(err)
}

func (s *AnswerStore) FindByID(ctx context.Context, id int64) (domain.Answer, error) {
	var m answerModel
	if err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Answer{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *AnswerStore) FindByQuestionAndID(ctx context.Context, questionID, id int64) (domain.Answer, error) {
	var m answerModel
	err := s.db.NewSelect().Model(&m).
		Where("id = ?", id).
		Where("question_id = ?", questionID).
		Scan(ctx)
	if err != nil {
		return domain.Answer{}, translate(err)
	}
	return m.toDomain(), nil
}

func (s *AnswerStore) FindAllByQuestion(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	var rows []answerModel
	err := s.db.NewSelect().Model(&rows).
		Where("question_id = ?", questionID).
		Where("NOT is_deleted").
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Answer, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (s *AnswerStore) Create(ctx context.Context, answer *domain.Answer) error {
	m := answerFrom(*answer)
	if _, err := s.db.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
		return translate(err)
	}
	answer.ID = m.ID
	return nil
}

func (s *AnswerStore) Update(ctx context.Context, answer *domain.Answer) error {
	m := answerFrom(*answer)
	return requireRow(s.db.NewUpdate().Model(&m).
		Column("answer_content", "correct", "is_deleted", "updated_by", "updated_at").
		WherePK().
		Exec(ctx))
}

func (s *AnswerStore) SoftDelete(ctx context.Context, id int64, username string, at time.Time) error {
	return requireRow(s.db.NewUpdate().Model((*answerModel)(nil)).
		Set("is_deleted = TRUE").
		Set("updated_by = ?", username).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx))
}
