package memory

import (
	"context"
	"sort"
	"time"

	"elearning-quiz-service/internal/domain"
)

type QuestionStore struct{ c *Catalog }

func (s *QuestionStore) FindByID(_ context.Context, id int64) (domain.Question, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	q, ok := s.c.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	q.Answers = s.answersOfLocked(q.ID)
	return q, nil
}

func (s *QuestionStore) FindByQuizAndOrdinal(_ context.Context, quizID int64, ord int) (domain.Question, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	for _, q := range s.c.questions {
		if q.QuizID == quizID && q.Ord == ord && !q.IsDeleted {
			q.Answers = s.answersOfLocked(q.ID)
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrNotFound
}

func (s *QuestionStore) CountByQuiz(_ context.Context, quizID int64) (int, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	n := 0
	for _, q := range s.c.questions {
		if q.QuizID == quizID && !q.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (s *QuestionStore) FindAllByQuiz(_ context.Context, quizID int64) ([]domain.Question, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, q := range s.c.questions {
		if q.QuizID == quizID && !q.IsDeleted {
			q.Answers = s.answersOfLocked(q.ID)
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ord < out[j].Ord })
	return out, nil
}

func (s *QuestionStore) CreateWithAnswers(_ context.Context, question *domain.Question) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	maxOrd := 0
	for _, q := range s.c.questions {
		if q.QuizID == question.QuizID && !q.IsDeleted && q.Ord > maxOrd {
			maxOrd = q.Ord
		}
	}
	question.ID = s.c.nextIDLocked()
	question.Ord = maxOrd + 1
	for i := range question.Answers {
		a := &question.Answers[i]
		a.ID = s.c.nextIDLocked()
		a.QuestionID = question.ID
		s.c.answers[a.ID] = *a
	}
	stored := *question
	stored.Answers = nil
	s.c.questions[question.ID] = stored
	s.c.writes++
	return nil
}

func (s *QuestionStore) SoftDelete(_ context.Context, id int64, username string, at time.Time) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	q, ok := s.c.questions[id]
	if !ok {
		return domain.ErrNotFound
	}
	wasLive := !q.IsDeleted
	q.IsDeleted = true
	q.UpdatedBy = username
	q.UpdatedAt = at
	s.c.questions[id] = q
	if wasLive {
		for otherID, other := range s.c.questions {
			if other.QuizID == q.QuizID && !other.IsDeleted && other.Ord > q.Ord {
				other.Ord--
				s.c.questions[otherID] = other
			}
		}
	}
	s.c.writes++
	return nil
}

// PutQuestion seeds a question with a fixed ordinal, plus its answers.
func (s *QuestionStore) PutQuestion(question domain.Question) domain.Question {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	question.ID = s.c.claimIDLocked(question.ID)
	for i := range question.Answers {
		a := &question.Answers[i]
		a.ID = s.c.claimIDLocked(a.ID)
		a.QuestionID = question.ID
		s.c.answers[a.ID] = *a
	}
	stored := question
	stored.Answers = nil
	s.c.questions[question.ID] = stored
	return question
}

func (s *QuestionStore) answersOfLocked(questionID int64) []domain.Answer {
	out := make([]domain.Answer, 0)
	for _, a := range s.c.answers {
		if a.QuestionID == questionID && !a.IsDeleted {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type AnswerStore struct{ c *Catalog }

func (s *AnswerStore) IsCorrect(ctx context.Context, id int64) (bool, error) {
	a, err := s.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if a.IsDeleted {
		return false, domain.ErrNotFound
	}
	return a.Correct, nil
}

func (s *AnswerStore) FindByID(_ context.Context, id int64) (domain.Answer, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	a, ok := s.c.answers[id]
	if !ok {
		return domain.Answer{}, domain.ErrNotFound
	}
	return a, nil
}

func (s *AnswerStore) FindByQuestionAndID(ctx context.Context, questionID, id int64) (domain.Answer, error) {
	a, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.Answer{}, err
	}
	if a.QuestionID != questionID {
		return domain.Answer{}, domain.ErrNotFound
	}
	return a, nil
}

func (s *AnswerStore) FindAllByQuestion(_ context.Context, questionID int64) ([]domain.Answer, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	return (&QuestionStore{c: s.c}).answersOfLocked(questionID), nil
}

func (s *AnswerStore) Create(_ context.Context, answer *domain.Answer) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	answer.ID = s.c.nextIDLocked()
	s.c.answers[answer.ID] = *answer
	s.c.writes++
	return nil
}

func (s *AnswerStore) Update(_ context.Context, answer *domain.Answer) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.answers[answer.ID]; !ok {
		return domain.ErrNotFound
	}
	s.c.answers[answer.ID] = *answer
	s.c.writes++
	return nil
}

func (s *AnswerStore) SoftDelete(_ context.Context, id int64, username string, at time.Time) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	a, ok := s.c.answers[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsDeleted = true
	a.UpdatedBy = username
	a.UpdatedAt = at
	s.c.answers[id] = a
	s.c.writes++
	return nil
}

// Remove hard-deletes an answer. Only used to simulate data drift in tests.
func (s *AnswerStore) Remove(id int64) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	delete(s.c.answers, id)
}
