package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"elearning-quiz-service/internal/domain"
)

// Catalog holds quizzes, questions, answers and their parents in memory.
// The typed stores returned by its accessors share one lock so question and
// answer writes stay consistent.
type Catalog struct {
	mu         sync.RWMutex
	seq        int64
	writes     int
	categories map[int64]domain.Category
	courses    map[int64]domain.Course
	lessons    map[int64]domain.Lesson
	quizzes    map[int64]domain.Quiz
	questions  map[int64]domain.Question
	answers    map[int64]domain.Answer
}

func NewCatalog() *Catalog {
	return &Catalog{
		categories: make(map[int64]domain.Category),
		courses:    make(map[int64]domain.Course),
		lessons:    make(map[int64]domain.Lesson),
		quizzes:    make(map[int64]domain.Quiz),
		questions:  make(map[int64]domain.Question),
		answers:    make(map[int64]domain.Answer),
	}
}

func (c *Catalog) Quizzes() *QuizStore         { return &QuizStore{c: c} }
func (c *Catalog) Questions() *QuestionStore   { return &QuestionStore{c: c} }
func (c *Catalog) Answers() *AnswerStore       { return &AnswerStore{c: c} }
func (c *Catalog) Lessons() *LessonStore       { return &LessonStore{c: c} }
func (c *Catalog) Courses() *CourseStore       { return &CourseStore{c: c} }
func (c *Catalog) Categories() *CategoryStore { return &CategoryStore{c: c} }

// Writes reports how many mutations the catalog has accepted.
func (c *Catalog) Writes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.writes
}

// PutCourse seeds a course, assigning an id when zero.
func (c *Catalog) PutCourse(course domain.Course) domain.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	course.ID = c.claimIDLocked(course.ID)
	c.courses[course.ID] = course
	return course
}

// PutLesson seeds a lesson, assigning an id when zero.
func (c *Catalog) PutLesson(lesson domain.Lesson) domain.Lesson {
	c.mu.Lock()
	defer c.mu.Unlock()
	lesson.ID = c.claimIDLocked(lesson.ID)
	c.lessons[lesson.ID] = lesson
	return lesson
}

func (c *Catalog) nextIDLocked() int64 {
	c.seq++
	return c.seq
}

// claimIDLocked keeps a seeded id and moves the sequence past it, or draws a
// fresh id when zero.
func (c *Catalog) claimIDLocked(id int64) int64 {
	if id == 0 {
		return c.nextIDLocked()
	}
	if id > c.seq {
		c.seq = id
	}
	return id
}

type QuizStore struct{ c *Catalog }

func (s *QuizStore) FindByID(_ context.Context, id int64) (domain.Quiz, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	q, ok := s.c.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrNotFound
	}
	return q, nil
}

func (s *QuizStore) FindByName(_ context.Context, name string) (domain.Quiz, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if q, ok := s.findByNameLocked(name, 0); ok {
		return q, nil
	}
	return domain.Quiz{}, domain.ErrNotFound
}

func (s *QuizStore) findByNameLocked(name string, exceptID int64) (domain.Quiz, bool) {
	for _, q := range s.c.quizzes {
		if q.ID != exceptID && !q.IsDeleted && strings.EqualFold(q.Name, name) {
			return q, true
		}
	}
	return domain.Quiz{}, false
}

func (s *QuizStore) Create(_ context.Context, quiz *domain.Quiz) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, dup := s.findByNameLocked(quiz.Name, 0); dup {
		return domain.ErrDuplicate
	}
	quiz.ID = s.c.nextIDLocked()
	s.c.quizzes[quiz.ID] = *quiz
	s.c.writes++
	return nil
}

func (s *QuizStore) Update(_ context.Context, quiz *domain.Quiz) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.quizzes[quiz.ID]; !ok {
		return domain.ErrNotFound
	}
	if !quiz.IsDeleted {
		if _, dup := s.findByNameLocked(quiz.Name, quiz.ID); dup {
			return domain.ErrDuplicate
		}
	}
	s.c.quizzes[quiz.ID] = *quiz
	s.c.writes++
	return nil
}

func (s *QuizStore) SoftDelete(_ context.Context, id int64, username string, at time.Time) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	q, ok := s.c.quizzes[id]
	if !ok {
		return domain.ErrNotFound
	}
	q.IsDeleted = true
	q.UpdatedBy = username
	q.UpdatedAt = at
	s.c.quizzes[id] = q
	s.c.writes++
	return nil
}

func (s *QuizStore) FindAllByDeleted(_ context.Context, deleted bool) ([]domain.Quiz, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, q := range s.c.quizzes {
		if q.IsDeleted == deleted {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type LessonStore struct{ c *Catalog }

func (s *LessonStore) FindByID(_ context.Context, id int64) (domain.Lesson, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	l, ok := s.c.lessons[id]
	if !ok {
		return domain.Lesson{}, domain.ErrNotFound
	}
	return l, nil
}

type CourseStore struct{ c *Catalog }

func (s *CourseStore) FindByID(_ context.Context, id int64) (domain.Course, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	course, ok := s.c.courses[id]
	if !ok {
		return domain.Course{}, domain.ErrNotFound
	}
	return course, nil
}

type CategoryStore struct{ c *Catalog }

func (s *CategoryStore) FindByID(_ context.Context, id int64) (domain.Category, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	cat, ok := s.c.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return cat, nil
}

func (s *CategoryStore) FindByName(_ context.Context, name string) (domain.Category, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if cat, ok := s.findByNameLocked(name, 0); ok {
		return cat, nil
	}
	return domain.Category{}, domain.ErrNotFound
}

func (s *CategoryStore) findByNameLocked(name string, exceptID int64) (domain.Category, bool) {
	for _, cat := range s.c.categories {
		if cat.ID != exceptID && !cat.IsDeleted && strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return domain.Category{}, false
}

func (s *CategoryStore) Create(_ context.Context, cat *domain.Category) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, dup := s.findByNameLocked(cat.Name, 0); dup {
		return domain.ErrDuplicate
	}
	cat.ID = s.c.nextIDLocked()
	s.c.categories[cat.ID] = *cat
	s.c.writes++
	return nil
}

func (s *CategoryStore) Update(_ context.Context, cat *domain.Category) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.categories[cat.ID]; !ok {
		return domain.ErrNotFound
	}
	if !cat.IsDeleted {
		if _, dup := s.findByNameLocked(cat.Name, cat.ID); dup {
			return domain.ErrDuplicate
		}
	}
	s.c.categories[cat.ID] = *cat
	s.c.writes++
	return nil
}

func (s *CategoryStore) FindAllByDeleted(_ context.Context, deleted bool) ([]domain.Category, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	out := make([]domain.Category, 0)
	for _, cat := range s.c.categories {
		if cat.IsDeleted == deleted {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
