package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/auth"
	"elearning-quiz-service/internal/config"
	"elearning-quiz-service/internal/infra/memory"
	"elearning-quiz-service/internal/infra/postgres"
	redisinfra "elearning-quiz-service/internal/infra/redis"
	"elearning-quiz-service/internal/metrics"
	"elearning-quiz-service/internal/notify"
	transport "elearning-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores is the persistence selected from config: postgres when a URL is
// set, memory otherwise. Redis, when configured, takes over session ids, OTP
// codes and the course cache.
type stores struct {
	quizzes    app.QuizRepository
	questions  app.QuestionRepository
	answers    app.AnswerRepository
	users      app.UserRepository
	courses    app.CourseRepository
	lessons    app.LessonRepository
	categories app.CategoryRepository
	history    app.HistoryRepository
	sessions   app.SessionIDGenerator
	otps       app.OTPStore
	closers    []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	s := &stores{}
	courseTTL := config.TTLDuration(cfg.Course.CacheTTL, 10*time.Minute)

	if cfg.Postgres.URL != "" {
		db := postgres.OpenBun(cfg.Postgres.URL)
		s.closers = append(s.closers, func() { db.Close() })
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)

		s.quizzes = postgres.NewQuizStore(db)
		s.questions = postgres.NewQuestionStore(db)
		s.answers = postgres.NewAnswerStore(db)
		s.users = postgres.NewUserStore(db)
		s.courses = postgres.NewCourseStore(db)
		s.lessons = postgres.NewLessonStore(db)
		s.categories = postgres.NewCategoryStore(db)
		s.history = postgres.NewHistoryStore(pool)
		s.sessions = postgres.NewSessionIDs(db)
		log.Printf("using postgres stores")
	} else {
		catalog := memory.NewCatalog()
		s.quizzes = catalog.Quizzes()
		s.questions = catalog.Questions()
		s.answers = catalog.Answers()
		s.courses = catalog.Courses()
		s.lessons = catalog.Lessons()
		s.categories = catalog.Categories()
		s.users = memory.NewUserStore()
		s.history = memory.NewHistoryStore()
		s.sessions = memory.NewSessionIDs()
		log.Printf("postgres url not configured, using in-memory stores")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			s.close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		s.sessions = redisinfra.NewSessionIDs(client)
		s.otps = redisinfra.NewOTPStore(client)
		s.courses = redisinfra.NewCourseCache(client, s.courses, courseTTL)
		log.Printf("using redis at %s for sessions, otp and course cache", cfg.Redis.Addr)
	} else {
		s.otps = memory.NewOTPStore()
		s.courses = memory.NewCourseCache(s.courses, courseTTL)
	}
	return s, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt secret not configured")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	publisher, err := notify.NewAMQPPublisher(cfg.AMQP.URL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	m := metrics.New()
	dispatcher := notify.NewDispatcher(publisher, m, cfg.Notify.QueueSize)
	issuer := auth.NewIssuer(
		cfg.JWT.Secret,
		config.TTLDuration(cfg.JWT.AccessTTL, 15*time.Minute),
		config.TTLDuration(cfg.JWT.RefreshTTL, 7*24*time.Hour),
	)

	svc := transport.Services{
		Quizzes: app.NewQuizService(app.QuizDeps{
			Quizzes:   st.quizzes,
			Questions: st.questions,
			Answers:   st.answers,
			Users:     st.users,
			Courses:   st.courses,
			Lessons:   st.lessons,
			History:   st.history,
			Sessions:  st.sessions,
			Notifier:  dispatcher,
			Recorder:  m,
		}),
		Questions:  app.NewQuestionService(st.quizzes, st.questions),
		Answers:    app.NewAnswerService(st.answers, st.questions),
		Categories: app.NewCategoryService(st.categories),
		Auth: app.NewAuthService(st.users, st.otps, dispatcher, issuer,
			config.TTLDuration(cfg.OTP.TTL, 5*time.Minute)),
	}
	router := transport.NewRouter(svc, issuer, transport.RouterOptions{
		AllowOrigins: cfg.Server.AllowOrigins,
		Metrics:      m.Handler(),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
