package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CourseCache caches courses with TTL in front of a backing CourseRepository.
// Finishing a quiz looks the course up on every call and courses rarely change.
type CourseCache struct {
	loader app.CourseRepository
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[int64]cachedCourse
}

type cachedCourse struct {
	course    domain.Course
	expiresAt time.Time
}

func NewCourseCache(loader app.CourseRepository, ttl time.Duration) *CourseCache {
	return &CourseCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedCourse),
	}
}

func (c *CourseCache) FindByID(ctx context.Context, id int64) (domain.Course, error) {
	if course, ok := c.lookup(id); ok {
		return course, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if course, ok := c.lookup(id); ok {
			return course, nil
		}
		course, err := c.loader.FindByID(ctx, id)
		if err != nil {
			return domain.Course{}, err
		}
		expiresAt := c.clock().Add(c.ttlWithJitter())
		c.mu.Lock()
		c.cache[id] = cachedCourse{course: course, expiresAt: expiresAt}
		c.mu.Unlock()
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return result.(domain.Course), nil
}

func (c *CourseCache) lookup(id int64) (domain.Course, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Course{}, false
	}
	return entry.course, true
}

func (c *CourseCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
