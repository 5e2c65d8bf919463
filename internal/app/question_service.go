package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"elearning-quiz-service/internal/domain"
)

type QuestionService struct {
	quizzes   QuizRepository
	questions QuestionRepository
	now       func() time.Time
}

func NewQuestionService(quizzes QuizRepository, questions QuestionRepository) *QuestionService {
	return &QuestionService{quizzes: quizzes, questions: questions, now: time.Now}
}

type AnswerData struct {
	Content string
	Correct bool
}

type AddQuestionRequest struct {
	Username     string
	QuizID       int64
	QuestionType domain.QuestionType
	QuestionName string
	Answers      []AnswerData
}

// AddQuestion appends a question, with its answers, at the end of a quiz.
func (s *QuestionService) AddQuestion(ctx context.Context, req AddQuestionRequest) (domain.Question, error) {
	if strings.TrimSpace(req.QuestionName) == "" || !hasCorrect(req.Answers) {
		return domain.Question{}, domain.NewError(domain.CodeInvalidData)
	}
	switch req.QuestionType {
	case domain.QuestionSingleChoice, domain.QuestionMultipleChoice:
	default:
		return domain.Question{}, domain.NewError(domain.CodeInvalidData)
	}
	if _, err := s.quizzes.FindByID(ctx, req.QuizID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Question{}, domain.NewError(domain.CodeQuizNotExist)
		}
		log.Printf("add question to quiz %d: quiz lookup: %v", req.QuizID, err)
		return domain.Question{}, domain.Fail("Add question fail", err)
	}

	now := s.now()
	audit := domain.Audit{CreatedBy: req.Username, UpdatedBy: req.Username, CreatedAt: now, UpdatedAt: now}
	question := domain.Question{
		QuizID: req.QuizID,
		Type:   req.QuestionType,
		Name:   strings.TrimSpace(req.QuestionName),
		Audit:  audit,
	}
	for _, a := range req.Answers {
		question.Answers = append(question.Answers, domain.Answer{Content: a.Content, Correct: a.Correct, Audit: audit})
	}
	if err := s.questions.CreateWithAnswers(ctx, &question); err != nil {
		log.Printf("add question to quiz %d: insert: %v", req.QuizID, err)
		return domain.Question{}, domain.Fail("Add question fail", err)
	}
	return question, nil
}

func (s *QuestionService) GetQuestionByID(ctx context.Context, id int64) (domain.Question, error) {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return domain.Question{}, questionError("get question", err)
	}
	return q, nil
}

// GetQuestionByOrdinal serves the next question during quiz taking, without
// revealing which answers are correct.
func (s *QuestionService) GetQuestionByOrdinal(ctx context.Context, quizID int64, ord int) (domain.Question, error) {
	q, err := s.questions.FindByQuizAndOrdinal(ctx, quizID, ord)
	if err != nil {
		return domain.Question{}, questionError("get question by ordinal", err)
	}
	return q.WithoutCorrectness(), nil
}

func (s *QuestionService) FindAllQuestionByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	qs, err := s.questions.FindAllByQuiz(ctx, quizID)
	if err != nil {
		log.Printf("find questions of quiz %d: %v", quizID, err)
		return nil, domain.Fail("Find all question fail", err)
	}
	if len(qs) == 0 {
		return nil, domain.NewError(domain.CodeQuestionListIsEmpty)
	}
	return qs, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, username string, id int64) (domain.Question, error) {
	if err := s.questions.SoftDelete(ctx, id, username, s.now()); err != nil {
		return domain.Question{}, questionError("delete question", err)
	}
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return domain.Question{}, questionError("delete question", err)
	}
	return q, nil
}

func questionError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.CodeQuestionNotExist)
	}
	log.Printf("%s: %v", op, err)
	return domain.Fail(op+" failed", err)
}

func hasCorrect(answers []AnswerData) bool {
	for _, a := range answers {
		if a.Correct {
			return true
		}
	}
	return false
}
