package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"elearning-quiz-service/internal/domain"
)

type CategoryService struct {
	categories CategoryRepository
	now        func() time.Time
}

func NewCategoryService(categories CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories, now: time.Now}
}

func (s *CategoryService) AddCategory(ctx context.Context, username, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.NewError(domain.CodeInvalidData)
	}
	_, err := s.categories.FindByName(ctx, name)
	if err == nil {
		return domain.Category{}, domain.NewError(domain.CodeCategoryExist)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Printf("add category %q: lookup: %v", name, err)
		return domain.Category{}, domain.Fail("Add category fail", err)
	}
	now := s.now()
	c := domain.Category{
		Name:  name,
		Audit: domain.Audit{CreatedBy: username, UpdatedBy: username, CreatedAt: now, UpdatedAt: now},
	}
	if err := s.categories.Create(ctx, &c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Category{}, domain.NewError(domain.CodeCategoryExist)
		}
		log.Printf("add category %q: insert: %v", name, err)
		return domain.Category{}, domain.Fail("Add category fail", err)
	}
	return c, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, username string, id int64, name string, deleted bool) (domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, categoryError("update category", err)
	}
	c.Name = strings.TrimSpace(name)
	c.IsDeleted = deleted
	c.UpdatedBy = username
	c.UpdatedAt = s.now()
	if err := s.categories.Update(ctx, &c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Category{}, domain.NewError(domain.CodeCategoryExist)
		}
		return domain.Category{}, categoryError("update category", err)
	}
	return c, nil
}

// DeleteCategory flags the category as deleted; the row is kept.
func (s *CategoryService) DeleteCategory(ctx context.Context, username string, id int64) (domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, categoryError("delete category", err)
	}
	c.IsDeleted = true
	c.UpdatedBy = username
	c.UpdatedAt = s.now()
	if err := s.categories.Update(ctx, &c); err != nil {
		return domain.Category{}, categoryError("delete category", err)
	}
	return c, nil
}

func (s *CategoryService) FindAllCategory(ctx context.Context) ([]domain.Category, error) {
	list, err := s.categories.FindAllByDeleted(ctx, false)
	if err != nil {
		log.Printf("find all category: %v", err)
		return nil, domain.Fail("Find all category fail", err)
	}
	if len(list) == 0 {
		return nil, domain.NewError(domain.CodeCategoryListIsEmpty)
	}
	return list, nil
}

func categoryError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.CodeCategoryNotExist)
	}
	log.Printf("%s: %v", op, err)
	return domain.Fail(op+" failed", err)
}
