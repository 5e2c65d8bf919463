package app

import (
	"context"
	"time"

	"elearning-quiz-service/internal/domain"
)

// Stores return domain.ErrNotFound for empty lookups and domain.ErrDuplicate
// when a unique constraint rejects a write.

type QuizRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Quiz, error)
	// FindByName only matches quizzes that are not soft-deleted.
	FindByName(ctx context.Context, name string) (domain.Quiz, error)
	Create(ctx context.Context, quiz *domain.Quiz) error
	// Update writes name, lesson, deleted flag and audit of an existing quiz.
	Update(ctx context.Context, quiz *domain.Quiz) error
	SoftDelete(ctx context.Context, id int64, username string, at time.Time) error
	FindAllByDeleted(ctx context.Context, deleted bool) ([]domain.Quiz, error)
}

type QuestionRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Question, error)
	// FindByQuizAndOrdinal returns the question with its answers attached.
	FindByQuizAndOrdinal(ctx context.Context, quizID int64, ord int) (domain.Question, error)
	CountByQuiz(ctx context.Context, quizID int64) (int, error)
	FindAllByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error)
	// CreateWithAnswers inserts the question and its answers atomically and
	// assigns the next ordinal within the quiz.
	CreateWithAnswers(ctx context.Context, question *domain.Question) error
	SoftDelete(ctx context.Context, id int64, username string, at time.Time) error
}

type AnswerRepository interface {
	IsCorrect(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (domain.Answer, error)
	FindByQuestionAndID(ctx context.Context, questionID, id int64) (domain.Answer, error)
	FindAllByQuestion(ctx context.Context, questionID int64) ([]domain.Answer, error)
	Create(ctx context.Context, answer *domain.Answer) error
	Update(ctx context.Context, answer *domain.Answer) error
	SoftDelete(ctx context.Context, id int64, username string, at time.Time) error
}

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}

type CourseRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Course, error)
}

type LessonRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Lesson, error)
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Category, error)
	FindByName(ctx context.Context, name string) (domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	FindAllByDeleted(ctx context.Context, deleted bool) ([]domain.Category, error)
}

// HistoryRepository is the append-only attempt log.
type HistoryRepository interface {
	// SaveAll persists every row or none of them.
	SaveAll(ctx context.Context, rows []domain.HistoryRow) error
	DistinctSessionIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	CountCorrectBySession(ctx context.Context, sessionID int64) (int, error)
	CountIncorrectBySession(ctx context.Context, sessionID int64) (int, error)
	LatestCreatedAtBySession(ctx context.Context, sessionID int64) (time.Time, error)
	CorrectAnswerIDsBySession(ctx context.Context, sessionID int64) ([]int64, error)
}

// SessionIDGenerator mints quiz attempt ids. Implementations must be safe for
// concurrent use and never hand out the same id twice.
type SessionIDGenerator interface {
	Next(ctx context.Context) (int64, error)
}

// OTPStore keeps one pending code per email.
type OTPStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Verify consumes the code on success and returns domain.ErrOTPMismatch otherwise.
	Verify(ctx context.Context, email, code string) error
}

// Notifier queues a mail for delivery. Send must not block on delivery.
type Notifier interface {
	Send(ctx context.Context, mail domain.Mail) error
}

// Recorder receives quiz outcome counters. A nil Recorder is allowed.
type Recorder interface {
	QuizFinished(passed bool)
	SessionStarted()
}
