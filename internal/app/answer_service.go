package app

import (
	"context"
	"errors"
	"log"
	"time"

	"elearning-quiz-service/internal/domain"
)

type AnswerService struct {
	answers   AnswerRepository
	questions QuestionRepository
	now       func() time.Time
}

func NewAnswerService(answers AnswerRepository, questions QuestionRepository) *AnswerService {
	return &AnswerService{answers: answers, questions: questions, now: time.Now}
}

type AddAnswerRequest struct {
	Username   string
	QuestionID int64
	Content    string
	Correct    bool
}

type UpdateAnswerRequest struct {
	Username   string
	QuestionID int64
	AnswerID   int64
	Content    string
	Correct    bool
}

func (s *AnswerService) GetAnswerByID(ctx context.Context, id int64) (domain.Answer, error) {
	a, err := s.answers.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Answer{}, domain.WithMessage(domain.CodeAnswerNotExist, "Answer not exist")
	}
	if err != nil {
		log.Printf("get answer %d: %v", id, err)
		return domain.Answer{}, domain.Fail("Get answer fail", err)
	}
	return a, nil
}

func (s *AnswerService) AddAnswer(ctx context.Context, req AddAnswerRequest) (domain.Answer, error) {
	if _, err := s.questions.FindByID(ctx, req.QuestionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Answer{}, domain.WithMessage(domain.CodeQuestionNotExist, "Question not exist, cannot add answer to question")
		}
		log.Printf("add answer to question %d: %v", req.QuestionID, err)
		return domain.Answer{}, domain.Fail("Add answer fail", err)
	}
	now := s.now()
	answer := domain.Answer{
		QuestionID: req.QuestionID,
		Content:    req.Content,
		Correct:    req.Correct,
		Audit:      domain.Audit{CreatedBy: req.Username, UpdatedBy: req.Username, CreatedAt: now, UpdatedAt: now},
	}
	if err := s.answers.Create(ctx, &answer); err != nil {
		log.Printf("add answer to question %d: insert: %v", req.QuestionID, err)
		return domain.Answer{}, domain.Fail("Add answer fail", err)
	}
	return answer, nil
}

func (s *AnswerService) UpdateAnswer(ctx context.Context, req UpdateAnswerRequest) (domain.Answer, error) {
	answer, err := s.answers.FindByQuestionAndID(ctx, req.QuestionID, req.AnswerID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Answer{}, domain.WithMessage(domain.CodeAnswerNotExist, "Answer not exist in question")
	}
	if err != nil {
		log.Printf("update answer %d: lookup: %v", req.AnswerID, err)
		return domain.Answer{}, domain.Fail("Update answer fail", err)
	}
	answer.Content = req.Content
	answer.Correct = req.Correct
	answer.UpdatedBy = req.Username
	answer.UpdatedAt = s.now()
	if err := s.answers.Update(ctx, &answer); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Answer{}, domain.WithMessage(domain.CodeAnswerNotExist, "Answer not exist in question")
		}
		log.Printf("update answer %d: write: %v", req.AnswerID, err)
		return domain.Answer{}, domain.Fail("Update answer fail", err)
	}
	return answer, nil
}

func (s *AnswerService) DeleteAnswer(ctx context.Context, username string, id int64) (domain.Answer, error) {
	if err := s.answers.SoftDelete(ctx, id, username, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Answer{}, domain.WithMessage(domain.CodeAnswerNotExist, "Answer not exist")
		}
		log.Printf("delete answer %d: %v", id, err)
		return domain.Answer{}, domain.Fail("Delete answer fail", err)
	}
	return s.GetAnswerByID(ctx, id)
}

func (s *AnswerService) FindAllAnswerByQuestion(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	answers, err := s.answers.FindAllByQuestion(ctx, questionID)
	if err != nil {
		log.Printf("find answers of question %d: %v", questionID, err)
		return nil, domain.Fail("Find all answer fail", err)
	}
	if len(answers) == 0 {
		return nil, domain.NewError(domain.CodeAnswerListIsEmpty)
	}
	return answers, nil
}
