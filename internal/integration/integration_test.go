package integration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/domain"
	"elearning-quiz-service/internal/infra/postgres"
	pgmigrations "elearning-quiz-service/internal/infra/postgres/migrations"
	infraredis "elearning-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

type nopNotifier struct{}

func (nopNotifier) Send(context.Context, domain.Mail) error { return nil }

type env struct {
	db        *bun.DB
	quizzes   *app.QuizService
	questions *app.QuestionService
	courseID  int64
	lessonID  int64
}

func TestQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	e := setup(t, ctx)

	quiz, err := e.quizzes.AddQuiz(ctx, app.AddQuizRequest{Username: "admin", QuizName: "Indexes", LessonID: e.lessonID})
	if err != nil {
		t.Fatalf("add quiz: %v", err)
	}
	if _, err := e.quizzes.AddQuiz(ctx, app.AddQuizRequest{Username: "admin", QuizName: "INDEXES", LessonID: e.lessonID}); domain.CodeOf(err) != domain.CodeQuizExist {
		t.Fatalf("expected QUIZ_EXIST for case-insensitive duplicate, got %v", err)
	}

	var correctIDs, wrongIDs []int64
	for i := 0; i < 3; i++ {
		q, err := e.questions.AddQuestion(ctx, app.AddQuestionRequest{
			Username:     "admin",
			QuizID:       quiz.QuizID,
			QuestionType: domain.QuestionSingleChoice,
			QuestionName: fmt.Sprintf("question %d", i+1),
			Answers: []app.AnswerData{
				{Content: "right", Correct: true},
				{Content: "wrong"},
			},
		})
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		if q.Ord != i+1 {
			t.Fatalf("expected ordinal %d, got %d", i+1, q.Ord)
		}
		for _, a := range q.Answers {
			if a.Correct {
				correctIDs = append(correctIDs, a.ID)
			} else {
				wrongIDs = append(wrongIDs, a.ID)
			}
		}
	}

	started, err := e.quizzes.StartQuiz(ctx, quiz.QuizID)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if started.TotalQuestion != 3 || started.Question.Ord != 1 {
		t.Fatalf("unexpected start %+v", started)
	}
	for _, a := range started.Question.Answers {
		if a.Correct {
			t.Fatalf("correct flag leaked on start")
		}
	}

	res, err := e.quizzes.FinishQuiz(ctx, app.FinishQuizRequest{
		Username:  "erin",
		CourseID:  e.courseID,
		QuizID:    quiz.QuizID,
		SessionID: started.SessionID,
		AnswerIDs: []int64{correctIDs[0], correctIDs[1], wrongIDs[2]},
	})
	if err != nil {
		t.Fatalf("finish quiz: %v", err)
	}
	if res.TotalCorrect != 2 || res.TotalIncorrect != 1 {
		t.Fatalf("unexpected finish %+v", res)
	}

	sessions, err := e.quizzes.GetAllSessionQuiz(ctx, "erin")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != started.SessionID {
		t.Fatalf("unexpected sessions %+v", sessions)
	}
	if sessions[0].CorrectCount != 2 || sessions[0].IncorrectCount != 1 {
		t.Fatalf("unexpected summary %+v", sessions[0])
	}

	answers, err := e.quizzes.GetAnswerCorrectBySessionID(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("session answers: %v", err)
	}
	if len(answers) != 2 || answers[0].ID != correctIDs[0] {
		t.Fatalf("unexpected correct answers %+v", answers)
	}

	reset, err := e.quizzes.ResetQuiz(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.NewSessionID <= started.SessionID {
		t.Fatalf("expected a fresh session id above %d, got %d", started.SessionID, reset.NewSessionID)
	}
}

func TestUnknownAnswerWritesNothing(t *testing.T) {
	ctx := context.Background()
	e := setup(t, ctx)

	_, err := e.quizzes.FinishQuiz(ctx, app.FinishQuizRequest{
		Username:  "erin",
		CourseID:  e.courseID,
		QuizID:    1,
		SessionID: 1,
		AnswerIDs: []int64{424242},
	})
	if domain.CodeOf(err) != domain.CodeAnswerNotExist {
		t.Fatalf("expected ANSWER_NOT_EXIST, got %v", err)
	}
	n, err := e.db.NewSelect().Table("history_quizzes").Count(ctx)
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no history rows, got %d", n)
	}
}

func TestConcurrentQuestionInsertsGetDistinctOrdinals(t *testing.T) {
	ctx := context.Background()
	e := setup(t, ctx)

	quiz, err := e.quizzes.AddQuiz(ctx, app.AddQuizRequest{Username: "admin", QuizName: "Locks", LessonID: e.lessonID})
	if err != nil {
		t.Fatalf("add quiz: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	ords := make(chan int, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := e.questions.AddQuestion(ctx, app.AddQuestionRequest{
				Username:     "admin",
				QuizID:       quiz.QuizID,
				QuestionType: domain.QuestionMultipleChoice,
				QuestionName: "which lock",
				Answers:      []app.AnswerData{{Content: "row", Correct: true}},
			})
			if err != nil {
				t.Errorf("add question: %v", err)
				return
			}
			ords <- q.Ord
		}()
	}
	wg.Wait()
	close(ords)

	seen := make(map[int]bool)
	for ord := range ords {
		if seen[ord] {
			t.Fatalf("ordinal %d handed out twice", ord)
		}
		seen[ord] = true
	}
	for i := 1; i <= writers; i++ {
		if !seen[i] {
			t.Fatalf("expected ordinals 1..%d, missing %d", writers, i)
		}
	}
}

func TestDeletingQuestionRenumbersLiveOrdinals(t *testing.T) {
	ctx := context.Background()
	e := setup(t, ctx)

	quiz, err := e.quizzes.AddQuiz(ctx, app.AddQuizRequest{Username: "admin", QuizName: "Vacuum", LessonID: e.lessonID})
	if err != nil {
		t.Fatalf("add quiz: %v", err)
	}
	ids := make([]int64, 0, 4)
	for i := 0; i < 4; i++ {
		q, err := e.questions.AddQuestion(ctx, app.AddQuestionRequest{
			Username:     "admin",
			QuizID:       quiz.QuizID,
			QuestionType: domain.QuestionSingleChoice,
			QuestionName: fmt.Sprintf("question %d", i+1),
			Answers:      []app.AnswerData{{Content: "right", Correct: true}},
		})
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		ids = append(ids, q.ID)
	}

	if _, err := e.questions.DeleteQuestion(ctx, "admin", ids[0]); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	if _, err := e.questions.DeleteQuestion(ctx, "admin", ids[2]); err != nil {
		t.Fatalf("delete third: %v", err)
	}

	started, err := e.quizzes.StartQuiz(ctx, quiz.QuizID)
	if err != nil {
		t.Fatalf("start quiz after deletes: %v", err)
	}
	if started.TotalQuestion != 2 || started.Question.ID != ids[1] {
		t.Fatalf("unexpected start %+v", started)
	}
	second, err := e.questions.GetQuestionByOrdinal(ctx, quiz.QuizID, 2)
	if err != nil {
		t.Fatalf("ordinal 2: %v", err)
	}
	if second.ID != ids[3] {
		t.Fatalf("expected question %d at ordinal 2, got %d", ids[3], second.ID)
	}

	next, err := e.questions.AddQuestion(ctx, app.AddQuestionRequest{
		Username:     "admin",
		QuizID:       quiz.QuizID,
		QuestionType: domain.QuestionSingleChoice,
		QuestionName: "question 5",
		Answers:      []app.AnswerData{{Content: "right", Correct: true}},
	})
	if err != nil {
		t.Fatalf("add after deletes: %v", err)
	}
	if next.Ord != 3 {
		t.Fatalf("expected ordinal 3, got %d", next.Ord)
	}
}

func TestPostgresSessionSequence(t *testing.T) {
	ctx := context.Background()
	e := setup(t, ctx)
	ids := postgres.NewSessionIDs(e.db)
	first, err := ids.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	second, err := ids.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if second <= first {
		t.Fatalf("expected increasing ids, got %d then %d", first, second)
	}
}

func setup(t *testing.T, ctx context.Context) *env {
	t.Helper()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	t.Cleanup(pgCleanup)
	redisURL, redisCleanup := startRedis(t, ctx)
	t.Cleanup(redisCleanup)

	db := postgres.OpenBun(pgURL)
	t.Cleanup(func() { db.Close() })
	migrateSchema(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	t.Cleanup(pool.Close)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	e := &env{db: db}
	if err := db.QueryRowContext(ctx, `INSERT INTO courses (name) VALUES (?) RETURNING id`, "Databases").Scan(&e.courseID); err != nil {
		t.Fatalf("insert course: %v", err)
	}
	if err := db.QueryRowContext(ctx, `INSERT INTO lessons (name, course_id) VALUES (?, ?) RETURNING id`, "Query plans", e.courseID).Scan(&e.lessonID); err != nil {
		t.Fatalf("insert lesson: %v", err)
	}
	users := postgres.NewUserStore(db)
	if err := users.Create(ctx, &domain.User{
		Username: "erin",
		Email:    "erin@example.com",
		Password: "x",
		Status:   domain.UserStatusActive,
		Role:     domain.RoleUser,
	}); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	quizzes := postgres.NewQuizStore(db)
	questions := postgres.NewQuestionStore(db)
	e.quizzes = app.NewQuizService(app.QuizDeps{
		Quizzes:   quizzes,
		Questions: questions,
		Answers:   postgres.NewAnswerStore(db),
		Users:     users,
		Courses:   infraredis.NewCourseCache(redisClient, postgres.NewCourseStore(db), time.Minute),
		Lessons:   postgres.NewLessonStore(db),
		History:   postgres.NewHistoryStore(pool),
		Sessions:  infraredis.NewSessionIDs(redisClient),
		Notifier:  nopNotifier{},
	})
	e.questions = app.NewQuestionService(quizzes, questions)
	return e
}

func migrateSchema(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
