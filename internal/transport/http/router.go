package http

import (
	"net/http"
	"time"

	"elearning-quiz-service/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Quizzes    *app.QuizService
	Questions  *app.QuestionService
	Answers    *app.AnswerService
	Categories *app.CategoryService
	Auth       *app.AuthService
}

type RouterOptions struct {
	AllowOrigins []string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(svc Services, tokens TokenParser, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: origins[0] != "*",
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	ws := NewWSHandler(svc.Quizzes, svc.Questions, tokens)
	r.GET("/ws/quiz", gin.WrapF(ws.ServeWS))

	authH := NewAuthHandler(svc.Auth)
	quizH := NewQuizHandler(svc.Quizzes, svc.Questions)
	catalogH := NewCatalogHandler(svc.Categories, svc.Questions, svc.Answers)

	api := r.Group("/api/v1")

	user := api.Group("/user")
	{
		user.POST("/register", authH.Register)
		user.POST("/otp", authH.GetOTP)
		user.POST("/otp/resend", authH.GetOTP)
		user.POST("/verify-otp", authH.VerifyOTP)
		user.POST("/login", authH.Login)
		user.POST("/forgot-password", authH.ForgotPassword)
		user.POST("/forgot-password/verify", authH.ResetPassword)
		user.POST("/refresh-token", authH.RefreshToken)

		private := user.Group("", RequireAuth(tokens))
		private.PUT("/change-password", authH.ChangePassword)
		private.PUT("/profile", authH.ChangeProfile)
	}

	quiz := api.Group("/quiz", RequireAuth(tokens))
	{
		quiz.GET("/start/:quizId", quizH.Start)
		quiz.GET("/reset", quizH.Reset)
		quiz.POST("/finish", quizH.Finish)
		quiz.GET("/:quizId/question/:ord", quizH.NextQuestion)
		quiz.GET("/sessions", quizH.Sessions)
		quiz.GET("/sessions/:sessionId/answers", quizH.SessionAnswers)
	}

	admin := api.Group("/admin", RequireAuth(tokens), RequireAdmin())
	{
		admin.GET("/user", authH.GetUserByEmail)

		category := admin.Group("/category")
		category.GET("", catalogH.ListCategories)
		category.POST("", catalogH.AddCategory)
		category.PUT("/:id", catalogH.UpdateCategory)
		category.DELETE("/:id", catalogH.DeleteCategory)

		quizzes := admin.Group("/quiz")
		quizzes.GET("", quizH.List)
		quizzes.GET("/:id", quizH.Get)
		quizzes.POST("", quizH.Add)
		quizzes.PUT("/:id", quizH.Update)
		quizzes.DELETE("/:id", quizH.Delete)

		question := admin.Group("/question")
		question.POST("", catalogH.AddQuestion)
		question.GET("/:id", catalogH.GetQuestion)
		question.GET("/quiz/:quizId", catalogH.ListQuestions)
		question.DELETE("/:id", catalogH.DeleteQuestion)

		answer := admin.Group("/answer")
		answer.POST("", catalogH.AddAnswer)
		answer.GET("/:id", catalogH.GetAnswer)
		answer.GET("/question/:questionId", catalogH.ListAnswers)
		answer.PUT("/:id", catalogH.UpdateAnswer)
		answer.DELETE("/:id", catalogH.DeleteAnswer)
	}

	return r
}
