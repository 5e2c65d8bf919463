package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"elearning-quiz-service/internal/domain"
)

func TestCourseCacheCaches(t *testing.T) {
	loader := &countingCourses{courses: map[int64]domain.Course{7: {ID: 7, Name: "Go Basics"}}}
	cache := NewCourseCache(loader, time.Minute)

	if _, err := cache.FindByID(context.Background(), 7); err != nil {
		t.Fatalf("find course: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}

	course, err := cache.FindByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("find course 2: %v", err)
	}
	if course.Name != "Go Basics" {
		t.Fatalf("unexpected course %+v", course)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
}

func TestCourseCacheExpires(t *testing.T) {
	loader := &countingCourses{courses: map[int64]domain.Course{7: {ID: 7, Name: "Go Basics"}}}
	cache := NewCourseCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.FindByID(context.Background(), 7); err != nil {
		t.Fatalf("find course: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.FindByID(context.Background(), 7); err != nil {
		t.Fatalf("find course after ttl: %v", err)
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls.Load())
	}
}

func TestCourseCacheDoesNotCacheMisses(t *testing.T) {
	loader := &countingCourses{courses: map[int64]domain.Course{}}
	cache := NewCourseCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.FindByID(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected misses to hit loader, calls %d", loader.calls.Load())
	}
}

func TestCourseCacheConcurrentReads(t *testing.T) {
	loader := &countingCourses{courses: map[int64]domain.Course{7: {ID: 7, Name: "Go Basics"}}}
	cache := NewCourseCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.FindByID(context.Background(), 7); err != nil {
				t.Errorf("find course: %v", err)
			}
		}()
	}
	wg.Wait()
	if calls := loader.calls.Load(); calls < 1 || calls > 20 {
		t.Fatalf("unexpected loader calls %d", calls)
	}
}

type countingCourses struct {
	courses map[int64]domain.Course
	calls   atomic.Int64
}

func (l *countingCourses) FindByID(_ context.Context, id int64) (domain.Course, error) {
	l.calls.Add(1)
	c, ok := l.courses[id]
	if !ok {
		return domain.Course{}, domain.ErrNotFound
	}
	return c, nil
}
