package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"elearning-quiz-service/internal/domain"
)

const (
	// PassMark is the score ratio at or above which a certificate mail is sent.
	PassMark            = 0.8
	certificateTemplate = "certificate"
)

// QuizService contains the quiz taking and quiz administration use cases.
type QuizService struct {
	quizzes   QuizRepository
	questions QuestionRepository
	answers   AnswerRepository
	users     UserRepository
	courses   CourseRepository
	lessons   LessonRepository
	history   HistoryRepository
	sessions  SessionIDGenerator
	notifier  Notifier
	recorder  Recorder
	now       func() time.Time
}

// QuizDeps groups the collaborators of QuizService.
type QuizDeps struct {
	Quizzes   QuizRepository
	Questions QuestionRepository
	Answers   AnswerRepository
	Users     UserRepository
	Courses   CourseRepository
	Lessons   LessonRepository
	History   HistoryRepository
	Sessions  SessionIDGenerator
	Notifier  Notifier
	Recorder  Recorder
}

func NewQuizService(deps QuizDeps) *QuizService {
	return &QuizService{
		quizzes:   deps.Quizzes,
		questions: deps.Questions,
		answers:   deps.Answers,
		users:     deps.Users,
		courses:   deps.Courses,
		lessons:   deps.Lessons,
		history:   deps.History,
		sessions:  deps.Sessions,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		now:       time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(deps QuizDeps, now func() time.Time) *QuizService {
	s := NewQuizService(deps)
	s.now = now
	return s
}

type StartQuizResult struct {
	Question      domain.Question `json:"question"`
	SessionID     int64           `json:"sessionId"`
	TotalQuestion int             `json:"totalQuestion"`
}

type ResetQuizResult struct {
	NewSessionID int64 `json:"newSessionId"`
}

type FinishQuizRequest struct {
	Username  string
	CourseID  int64
	QuizID    int64
	SessionID int64
	AnswerIDs []int64
}

type FinishQuizResult struct {
	TotalCorrect   int     `json:"totalCorrect"`
	TotalIncorrect int     `json:"totalIncorrect"`
	Percent        float64 `json:"percent"`
}

// StartQuiz opens an attempt: first question, question count and a fresh session id.
func (s *QuizService) StartQuiz(ctx context.Context, quizID int64) (StartQuizResult, error) {
	if _, err := s.quizzes.FindByID(ctx, quizID); err != nil {
		log.Printf("start quiz %d: quiz lookup: %v", quizID, err)
		return StartQuizResult{}, domain.Fail("start quiz failed", err)
	}
	question, err := s.questions.FindByQuizAndOrdinal(ctx, quizID, 1)
	if err != nil {
		log.Printf("start quiz %d: first question lookup: %v", quizID, err)
		return StartQuizResult{}, domain.Fail("start quiz failed", err)
	}
	total, err := s.questions.CountByQuiz(ctx, quizID)
	if err != nil {
		log.Printf("start quiz %d: count questions: %v", quizID, err)
		return StartQuizResult{}, domain.Fail("start quiz failed", err)
	}
	sessionID, err := s.sessions.Next(ctx)
	if err != nil {
		log.Printf("start quiz %d: mint session: %v", quizID, err)
		return StartQuizResult{}, domain.Fail("start quiz failed", err)
	}
	if s.recorder != nil {
		s.recorder.SessionStarted()
	}
	return StartQuizResult{
		Question:      question.WithoutCorrectness(),
		SessionID:     sessionID,
		TotalQuestion: total,
	}, nil
}

// ResetQuiz hands out a new session id. Earlier history is left untouched.
func (s *QuizService) ResetQuiz(ctx context.Context) (ResetQuizResult, error) {
	sessionID, err := s.sessions.Next(ctx)
	if err != nil {
		log.Printf("reset quiz: mint session: %v", err)
		return ResetQuizResult{}, domain.Fail("reset quiz failed", err)
	}
	if s.recorder != nil {
		s.recorder.SessionStarted()
	}
	return ResetQuizResult{NewSessionID: sessionID}, nil
}

// FinishQuiz scores the submitted answers, records one history row per answer
// and queues a certificate mail when the pass mark is reached.
func (s *QuizService) FinishQuiz(ctx context.Context, req FinishQuizRequest) (FinishQuizResult, error) {
	user, err := optional(s.users.FindByUsername(ctx, req.Username))
	if err != nil {
		log.Printf("finish quiz: user lookup %q: %v", req.Username, err)
		return FinishQuizResult{}, domain.Fail("finish quiz failed", err)
	}
	course, err := optional(s.courses.FindByID(ctx, req.CourseID))
	if err != nil {
		log.Printf("finish quiz: course lookup %d: %v", req.CourseID, err)
		return FinishQuizResult{}, domain.Fail("finish quiz failed", err)
	}

	totalQuestion, err := s.questions.CountByQuiz(ctx, req.QuizID)
	if err != nil {
		log.Printf("finish quiz: count questions of quiz %d: %v", req.QuizID, err)
		return FinishQuizResult{}, domain.Fail("finish quiz failed", err)
	}

	var userID *int64
	if user != nil {
		id := user.ID
		userID = &id
	}

	quizAnswers, err := s.answerIDsOfQuiz(ctx, req.QuizID)
	if err != nil {
		log.Printf("finish quiz: answers of quiz %d: %v", req.QuizID, err)
		return FinishQuizResult{}, domain.Fail("finish quiz failed", err)
	}

	now := s.now()
	totalCorrect := 0
	seen := make(map[int64]struct{}, len(req.AnswerIDs))
	rows := make([]domain.HistoryRow, 0, len(req.AnswerIDs))
	for _, answerID := range req.AnswerIDs {
		if _, dup := seen[answerID]; dup {
			return FinishQuizResult{}, domain.WithMessage(domain.CodeInvalidData, "answer submitted more than once")
		}
		seen[answerID] = struct{}{}

		correct, err := s.answers.IsCorrect(ctx, answerID)
		if errors.Is(err, domain.ErrNotFound) {
			return FinishQuizResult{}, domain.NewError(domain.CodeAnswerNotExist)
		}
		if err != nil {
			log.Printf("finish quiz: check answer %d: %v", answerID, err)
			return FinishQuizResult{}, domain.Fail("finish quiz failed", err)
		}
		if _, ok := quizAnswers[answerID]; !ok {
			return FinishQuizResult{}, domain.WithMessage(domain.CodeInvalidData, "answer does not belong to quiz")
		}
		if correct {
			totalCorrect++
		}
		rows = append(rows, domain.HistoryRow{
			UserID:    userID,
			SessionID: req.SessionID,
			AnswerID:  answerID,
			Correct:   correct,
			CreatedAt: now,
		})
	}

	if len(rows) > 0 {
		if err := s.history.SaveAll(ctx, rows); err != nil {
			log.Printf("finish quiz: save history of session %d: %v", req.SessionID, err)
			return FinishQuizResult{}, domain.Fail("finish quiz failed", err)
		}
	}

	totalIncorrect := totalQuestion - totalCorrect
	if totalIncorrect < 0 {
		totalIncorrect = 0
	}
	mark := 0.0
	if totalQuestion > 0 {
		mark = float64(totalCorrect) / float64(totalQuestion)
	}

	passed := mark >= PassMark
	if passed {
		s.sendCertificate(ctx, user, course)
	}
	if s.recorder != nil {
		s.recorder.QuizFinished(passed)
	}

	return FinishQuizResult{
		TotalCorrect:   totalCorrect,
		TotalIncorrect: totalIncorrect,
		Percent:        mark,
	}, nil
}

// answerIDsOfQuiz returns the live answers of the quiz's live questions.
func (s *QuizService) answerIDsOfQuiz(ctx context.Context, quizID int64) (map[int64]struct{}, error) {
	questions, err := s.questions.FindAllByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]struct{})
	for _, q := range questions {
		for _, a := range q.Answers {
			ids[a.ID] = struct{}{}
		}
	}
	return ids, nil
}

func (s *QuizService) sendCertificate(ctx context.Context, user *domain.User, course *domain.Course) {
	if user == nil || course == nil {
		log.Printf("finish quiz: pass mark reached but user or course unresolved, certificate skipped")
		return
	}
	mail := domain.Mail{
		To:        user.Email,
		Subject:   "Congratulations on earning your " + course.Name,
		Template:  certificateTemplate,
		Variables: map[string]any{"course_name": course.Name},
	}
	if err := s.notifier.Send(ctx, mail); err != nil {
		log.Printf("finish quiz: queue certificate for %s: %v", user.Email, err)
	}
}

// GetAllSessionQuiz summarises every session the user has history for.
func (s *QuizService) GetAllSessionQuiz(ctx context.Context, username string) ([]domain.SessionSummary, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.CodeUserNotFound)
	}
	if err != nil {
		log.Printf("get all session quiz %q: user lookup: %v", username, err)
		return nil, domain.Fail("get all session quiz failed", err)
	}

	sessionIDs, err := s.history.DistinctSessionIDsByUser(ctx, user.ID)
	if err != nil {
		log.Printf("get all session quiz %q: list sessions: %v", username, err)
		return nil, domain.Fail("get all session quiz failed", err)
	}

	summaries := make([]domain.SessionSummary, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		summary, err := s.summarise(ctx, id)
		if err != nil {
			log.Printf("get all session quiz %q: session %d: %v", username, id, err)
			return nil, domain.Fail("get all session quiz failed", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *QuizService) summarise(ctx context.Context, sessionID int64) (domain.SessionSummary, error) {
	correct, err := s.history.CountCorrectBySession(ctx, sessionID)
	if err != nil {
		return domain.SessionSummary{}, err
	}
	incorrect, err := s.history.CountIncorrectBySession(ctx, sessionID)
	if err != nil {
		return domain.SessionSummary{}, err
	}
	latest, err := s.history.LatestCreatedAtBySession(ctx, sessionID)
	if err != nil {
		return domain.SessionSummary{}, err
	}
	return domain.SessionSummary{
		SessionID:      sessionID,
		CorrectCount:   correct,
		IncorrectCount: incorrect,
		LastActivity:   latest,
	}, nil
}

// GetAnswerCorrectBySessionID lists the answers marked correct in a session.
func (s *QuizService) GetAnswerCorrectBySessionID(ctx context.Context, sessionID int64) ([]domain.AnswerCorrect, error) {
	ids, err := s.history.CorrectAnswerIDsBySession(ctx, sessionID)
	if err != nil {
		log.Printf("get correct answers of session %d: %v", sessionID, err)
		return nil, domain.Fail("get correct answer by session failed", err)
	}

	out := make([]domain.AnswerCorrect, 0, len(ids))
	for _, id := range ids {
		answer, err := s.answers.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("get correct answers of session %d: answer %d in history no longer exists, skipped", sessionID, id)
			continue
		}
		if err != nil {
			log.Printf("get correct answers of session %d: answer %d: %v", sessionID, id, err)
			return nil, domain.Fail("get correct answer by session failed", err)
		}
		out = append(out, domain.AnswerCorrect{
			ID:         answer.ID,
			Content:    answer.Content,
			Correct:    answer.Correct,
			QuestionID: answer.QuestionID,
		})
	}
	return out, nil
}

type AddQuizRequest struct {
	Username string
	QuizName string
	LessonID int64
}

type AddQuizResult struct {
	QuizID   int64  `json:"quizId"`
	QuizName string `json:"quizName"`
	LessonID int64  `json:"lessonId"`
}

func (s *QuizService) AddQuiz(ctx context.Context, req AddQuizRequest) (AddQuizResult, error) {
	name := strings.TrimSpace(req.QuizName)
	if name == "" {
		return AddQuizResult{}, domain.NewError(domain.CodeInvalidData)
	}
	_, err := s.quizzes.FindByName(ctx, name)
	if err == nil {
		return AddQuizResult{}, domain.NewError(domain.CodeQuizExist)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Printf("add quiz %q: name lookup: %v", name, err)
		return AddQuizResult{}, domain.Fail("Add Quiz fail", err)
	}
	if _, err := s.lessons.FindByID(ctx, req.LessonID); err != nil {
		return AddQuizResult{}, s.lessonError("add quiz", err)
	}

	now := s.now()
	quiz := domain.Quiz{
		Name:     name,
		LessonID: req.LessonID,
		Audit:    domain.Audit{CreatedBy: req.Username, UpdatedBy: req.Username, CreatedAt: now, UpdatedAt: now},
	}
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return AddQuizResult{}, domain.NewError(domain.CodeQuizExist)
		}
		log.Printf("add quiz %q: insert: %v", name, err)
		return AddQuizResult{}, domain.Fail("Add Quiz fail", err)
	}
	return AddQuizResult{QuizID: quiz.ID, QuizName: quiz.Name, LessonID: quiz.LessonID}, nil
}

type UpdateQuizRequest struct {
	Username  string
	QuizID    int64
	QuizName  string
	LessonID  int64
	IsDeleted bool
}

type UpdateQuizResult struct {
	QuizName   string    `json:"quizName"`
	LessonID   int64     `json:"lessonId"`
	LessonName string    `json:"lessonName"`
	UpdatedAt  time.Time `json:"updateAt"`
}

func (s *QuizService) UpdateQuiz(ctx context.Context, req UpdateQuizRequest) (UpdateQuizResult, error) {
	quiz, err := s.quizzes.FindByID(ctx, req.QuizID)
	if errors.Is(err, domain.ErrNotFound) {
		return UpdateQuizResult{}, domain.NewError(domain.CodeQuizNotExist)
	}
	if err != nil {
		log.Printf("update quiz %d: lookup: %v", req.QuizID, err)
		return UpdateQuizResult{}, domain.Fail("Update quiz fail", err)
	}
	lesson, err := s.lessons.FindByID(ctx, req.LessonID)
	if err != nil {
		return UpdateQuizResult{}, s.lessonError("update quiz", err)
	}

	quiz.Name = strings.TrimSpace(req.QuizName)
	quiz.LessonID = lesson.ID
	quiz.IsDeleted = req.IsDeleted
	quiz.UpdatedBy = req.Username
	quiz.UpdatedAt = s.now()
	if err := s.quizzes.Update(ctx, &quiz); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return UpdateQuizResult{}, domain.NewError(domain.CodeQuizNotExist)
		case errors.Is(err, domain.ErrDuplicate):
			return UpdateQuizResult{}, domain.NewError(domain.CodeQuizExist)
		}
		log.Printf("update quiz %d: write: %v", req.QuizID, err)
		return UpdateQuizResult{}, domain.Fail("Update quiz fail", err)
	}
	return UpdateQuizResult{
		QuizName:   quiz.Name,
		LessonID:   lesson.ID,
		LessonName: lesson.Name,
		UpdatedAt:  quiz.UpdatedAt,
	}, nil
}

type DeleteQuizResult = UpdateQuizResult

func (s *QuizService) DeleteQuiz(ctx context.Context, username string, quizID int64) (DeleteQuizResult, error) {
	now := s.now()
	if err := s.quizzes.SoftDelete(ctx, quizID, username, now); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return DeleteQuizResult{}, domain.NewError(domain.CodeQuizNotExist)
		}
		log.Printf("delete quiz %d: %v", quizID, err)
		return DeleteQuizResult{}, domain.Fail("Delete quiz fail", err)
	}
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		log.Printf("delete quiz %d: reload: %v", quizID, err)
		return DeleteQuizResult{}, domain.Fail("Delete quiz fail", err)
	}
	out := DeleteQuizResult{QuizName: quiz.Name, LessonID: quiz.LessonID, UpdatedAt: now}
	if lesson, err := s.lessons.FindByID(ctx, quiz.LessonID); err == nil {
		out.LessonName = lesson.Name
	}
	return out, nil
}

func (s *QuizService) FindAllQuiz(ctx context.Context) ([]domain.Quiz, error) {
	return s.FindAllQuizByDeleted(ctx, false)
}

func (s *QuizService) FindAllQuizByDeleted(ctx context.Context, deleted bool) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.FindAllByDeleted(ctx, deleted)
	if err != nil {
		log.Printf("find all quiz (deleted=%t): %v", deleted, err)
		return nil, domain.Fail("Find all quiz fail", err)
	}
	if len(quizzes) == 0 {
		return nil, domain.NewError(domain.CodeQuizListIsEmpty)
	}
	return quizzes, nil
}

func (s *QuizService) GetQuizByID(ctx context.Context, id int64) (domain.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Quiz{}, domain.NewError(domain.CodeQuizNotExist)
	}
	if err != nil {
		log.Printf("get quiz %d: %v", id, err)
		return domain.Quiz{}, domain.Fail("Get quiz by id failed", err)
	}
	return quiz, nil
}

func (s *QuizService) lessonError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.CodeLessonNotExist)
	}
	log.Printf("%s: lesson lookup: %v", op, err)
	return domain.Fail(op+" failed", err)
}

// optional turns a not-found lookup into a nil result.
func optional[T any](v T, err error) (*T, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
