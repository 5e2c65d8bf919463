package domain

import "time"

// UserStatus tracks whether a registered account has confirmed its email.
type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// User is an account in the identity store. Password holds the bcrypt hash.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	FullName  string     `json:"fullName"`
	Phone     string     `json:"phone"`
	Gender    Gender     `json:"gender,omitempty"`
	Status    UserStatus `json:"status"`
	Role      UserRole   `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Audit carries who touched a record and when.
type Audit struct {
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsDeleted bool   `json:"isDeleted"`
	Audit
}

type Course struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CategoryID  int64  `json:"categoryId"`
	Description string `json:"description"`
	IsDeleted   bool   `json:"isDeleted"`
}

type Lesson struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CourseID int64  `json:"courseId"`
}

// Quiz is never hard-deleted; IsDeleted marks logical removal.
type Quiz struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	LessonID  int64  `json:"lessonId"`
	IsDeleted bool   `json:"isDeleted"`
	Audit
}

// Question belongs to one quiz. Ord is 1-based and sequences quiz taking.
type Question struct {
	ID        int64        `json:"id"`
	QuizID    int64        `json:"quizId"`
	Ord       int          `json:"ordQuestion"`
	Type      QuestionType `json:"questionType"`
	Name      string       `json:"questionName"`
	IsDeleted bool         `json:"isDeleted"`
	Answers   []Answer     `json:"answers,omitempty"`
	Audit
}

type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	Content    string `json:"answerContent"`
	Correct    bool   `json:"correct"`
	IsDeleted  bool   `json:"isDeleted"`
	Audit
}

// HistoryRow records the outcome of one submitted answer within a session.
// Rows are append-only. UserID is nil when the user could not be resolved.
type HistoryRow struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"userId"`
	SessionID int64     `json:"sessionId"`
	AnswerID  int64     `json:"answerId"`
	Correct   bool      `json:"correct"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionSummary is the per-session aggregate derived from history rows.
type SessionSummary struct {
	SessionID      int64     `json:"sessionId"`
	CorrectCount   int       `json:"correctCount"`
	IncorrectCount int       `json:"incorrectCount"`
	LastActivity   time.Time `json:"lastActivity"`
}

// AnswerCorrect is the projection returned when reviewing a session.
type AnswerCorrect struct {
	ID         int64  `json:"id"`
	Content    string `json:"answerContent"`
	Correct    bool   `json:"correct"`
	QuestionID int64  `json:"questionId"`
}

// Mail is a structured notification handed to the mailer.
type Mail struct {
	To        string         `json:"to"`
	Subject   string         `json:"subject"`
	Template  string         `json:"template"`
	Variables map[string]any `json:"variables"`
}

// WithoutCorrectness returns a copy of the question whose answers hide the correct flag.
func (q Question) WithoutCorrectness() Question {
	out := q
	out.Answers = make([]Answer, len(q.Answers))
	for i, a := range q.Answers {
		a.Correct = false
		out.Answers[i] = a
	}
	return out
}
