package postgres

import (
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type auditColumns struct {
	CreatedBy string    `bun:"created_by"`
	UpdatedBy string    `bun:"updated_by"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (a auditColumns) toDomain() domain.Audit {
	return domain.Audit{CreatedBy: a.CreatedBy, UpdatedBy: a.UpdatedBy, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

func auditFrom(a domain.Audit) auditColumns {
	return auditColumns{CreatedBy: a.CreatedBy, UpdatedBy: a.UpdatedBy, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Username  string    `bun:"username,notnull"`
	Email     string    `bun:"email,notnull"`
	Password  string    `bun:"password,notnull"`
	FullName  string    `bun:"full_name"`
	Phone     string    `bun:"phone"`
	Gender    string    `bun:"gender"`
	Status    string    `bun:"status,notnull"`
	Role      string    `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Password:  m.Password,
		FullName:  m.FullName,
		Phone:     m.Phone,
		Gender:    domain.Gender(m.Gender),
		Status:    domain.UserStatus(m.Status),
		Role:      domain.UserRole(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func userFrom(u domain.User) userModel {
	return userModel{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Gender:    string(u.Gender),
		Status:    string(u.Status),
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type categoryModel struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull"`
	IsDeleted bool   `bun:"is_deleted,notnull"`
	auditColumns
}

func (m categoryModel) toDomain() domain.Category {
	return domain.Category{ID: m.ID, Name: m.Name, IsDeleted: m.IsDeleted, Audit: m.auditColumns.toDomain()}
}

type courseModel struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Name        string `bun:"name,notnull"`
	CategoryID  int64  `bun:"category_id"`
	Description string `bun:"description"`
	IsDeleted   bool   `bun:"is_deleted,notnull"`
}

type lessonModel struct {
	bun.BaseModel `bun:"table:lessons,alias:l"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull"`
	CourseID int64  `bun:"course_id"`
}

type quizModel struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull"`
	LessonID  int64  `bun:"lesson_id"`
	IsDeleted bool   `bun:"is_deleted,notnull"`
	auditColumns
}

func (m quizModel) toDomain() domain.Quiz {
	return domain.Quiz{ID: m.ID, Name: m.Name, LessonID: m.LessonID, IsDeleted: m.IsDeleted, Audit: m.auditColumns.toDomain()}
}

func quizFrom(q domain.Quiz) quizModel {
	return quizModel{ID: q.ID, Name: q.Name, LessonID: q.LessonID, IsDeleted: q.IsDeleted, auditColumns: auditFrom(q.Audit)}
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID        int64          `bun:"id,pk,autoincrement"`
	QuizID    int64          `bun:"quiz_id,notnull"`
	Ord       int            `bun:"ord_question,notnull"`
	Type      string         `bun:"question_type,notnull"`
	Name      string         `bun:"question_name,notnull"`
	IsDeleted bool           `bun:"is_deleted,notnull"`
	Answers   []*answerModel `bun:"rel:has-many,join:id=question_id"`
	auditColumns
}

func (m questionModel) toDomain() domain.Question {
	q := domain.Question{
		ID:        m.ID,
		QuizID:    m.QuizID,
		Ord:       m.Ord,
		Type:      domain.QuestionType(m.Type),
		Name:      m.Name,
		IsDeleted: m.IsDeleted,
		Answers:   make([]domain.Answer, 0, len(m.Answers)),
		Audit:     m.auditColumns.toDomain(),
	}
	for _, a := range m.Answers {
		q.Answers = append(q.Answers, a.toDomain())
	}
	return q
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers,alias:a"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Content    string `bun:"answer_content,notnull"`
	Correct    bool   `bun:"correct,notnull"`
	IsDeleted  bool   `bun:"is_deleted,notnull"`
	auditColumns
}

func (m answerModel) toDomain() domain.Answer {
	return domain.Answer{
		ID:         m.ID,
		QuestionID: m.QuestionID,
		Content:    m.Content,
		Correct:    m.Correct,
		IsDeleted:  m.IsDeleted,
		Audit:      m.auditColumns.toDomain(),
	}
}

func answerFrom(a domain.Answer) answerModel {
	return answerModel{
		ID:           a.ID,
		QuestionID:   a.QuestionID,
		Content:      a.Content,
		Correct:      a.Correct,
		IsDeleted:    a.IsDeleted,
		auditColumns: auditFrom(a.Audit),
	}
}
