package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CourseCache caches courses in Redis and falls back to a loader on cache miss.
// Courses are stored as JSON under course:{id} with a jittered TTL.
type CourseCache struct {
	client *redis.Client
	loader app.CourseRepository
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCourseCache(client *redis.Client, loader app.CourseRepository, ttl time.Duration) *CourseCache {
	return &CourseCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CourseCache) FindByID(ctx context.Context, id int64) (domain.Course, error) {
	if course, ok := c.lookup(ctx, id); ok {
		return course, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if course, ok := c.lookup(ctx, id); ok {
			return course, nil
		}
		course, err := c.loader.FindByID(ctx, id)
		if err != nil {
			return domain.Course{}, err
		}
		raw, err := json.Marshal(course)
		if err != nil {
			return domain.Course{}, err
		}
		if err := c.client.Set(ctx, c.key(id), raw, c.ttlWithJitter()).Err(); err != nil {
			log.Printf("course cache: set %d: %v", id, err)
		}
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return result.(domain.Course), nil
}

// Invalidate drops the cached copy of a course.
func (c *CourseCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *CourseCache) lookup(ctx context.Context, id int64) (domain.Course, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return domain.Course{}, false
	}
	var course domain.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return domain.Course{}, false
	}
	return course, true
}

func (c *CourseCache) key(id int64) string {
	return "course:" + strconv.FormatInt(id, 10)
}

func (c *CourseCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
