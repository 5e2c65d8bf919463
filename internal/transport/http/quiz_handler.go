package http

import (
	"strconv"

	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizzes   *app.QuizService
	questions *app.QuestionService
}

func NewQuizHandler(quizzes *app.QuizService, questions *app.QuestionService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, questions: questions}
}

type finishQuizRequest struct {
	CourseID  int64   `json:"courseId" binding:"required,gt=0"`
	QuizID    int64   `json:"quizId" binding:"required,gt=0"`
	SessionID int64   `json:"sessionId" binding:"required,gt=0"`
	AnswerIDs []int64 `json:"answerIds" binding:"dive,gt=0"`
}

type quizRequest struct {
	QuizName  string `json:"quizName" binding:"required,max=255"`
	LessonID  int64  `json:"lessonId" binding:"required,gt=0"`
	IsDeleted bool   `json:"isDeleted"`
}

func (h *QuizHandler) Start(c *gin.Context) {
	quizID, ok := idParam(c, "quizId")
	if !ok {
		return
	}
	res, err := h.quizzes.StartQuiz(c.Request.Context(), quizID)
	respond(c, res, err, "Start quiz success")
}

func (h *QuizHandler) Reset(c *gin.Context) {
	res, err := h.quizzes.ResetQuiz(c.Request.Context())
	respond(c, res, err, "Reset quiz success")
}

func (h *QuizHandler) Finish(c *gin.Context) {
	var req finishQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.quizzes.FinishQuiz(c.Request.Context(), app.FinishQuizRequest{
		Username:  username(c),
		CourseID:  req.CourseID,
		QuizID:    req.QuizID,
		SessionID: req.SessionID,
		AnswerIDs: req.AnswerIDs,
	})
	respond(c, res, err, "Finish quiz success")
}

func (h *QuizHandler) NextQuestion(c *gin.Context) {
	quizID, ok := idParam(c, "quizId")
	if !ok {
		return
	}
	ord, err := strconv.Atoi(c.Param("ord"))
	if err != nil || ord < 1 {
		abortWith(c, domain.WithMessage(domain.CodeInvalidData, "invalid ord"))
		return
	}
	res, err := h.questions.GetQuestionByOrdinal(c.Request.Context(), quizID, ord)
	respond(c, res, err, "")
}

func (h *QuizHandler) Sessions(c *gin.Context) {
	res, err := h.quizzes.GetAllSessionQuiz(c.Request.Context(), username(c))
	respond(c, res, err, "")
}

func (h *QuizHandler) SessionAnswers(c *gin.Context) {
	sessionID, ok := idParam(c, "sessionId")
	if !ok {
		return
	}
	res, err := h.quizzes.GetAnswerCorrectBySessionID(c.Request.Context(), sessionID)
	respond(c, res, err, "")
}

func (h *QuizHandler) Add(c *gin.Context) {
	var req quizRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.quizzes.AddQuiz(c.Request.Context(), app.AddQuizRequest{
		Username: username(c),
		QuizName: req.QuizName,
		LessonID: req.LessonID,
	})
	respond(c, res, err, "Add quiz success")
}

func (h *QuizHandler) Update(c *gin.Context) {
	quizID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req quizRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.quizzes.UpdateQuiz(c.Request.Context(), app.UpdateQuizRequest{
		Username:  username(c),
		QuizID:    quizID,
		QuizName:  req.QuizName,
		LessonID:  req.LessonID,
		IsDeleted: req.IsDeleted,
	})
	respond(c, res, err, "Update quiz success")
}

func (h *QuizHandler) Delete(c *gin.Context) {
	quizID, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.quizzes.DeleteQuiz(c.Request.Context(), username(c), quizID)
	respond(c, res, err, "Delete quiz success")
}

// List returns live quizzes, or deleted ones with ?deleted=true.
func (h *QuizHandler) List(c *gin.Context) {
	raw, ok := c.GetQuery("deleted")
	if !ok {
		res, err := h.quizzes.FindAllQuiz(c.Request.Context())
		respond(c, res, err, "")
		return
	}
	deleted, err := strconv.ParseBool(raw)
	if err != nil {
		abortWith(c, domain.WithMessage(domain.CodeInvalidData, "invalid deleted flag"))
		return
	}
	res, err := h.quizzes.FindAllQuizByDeleted(c.Request.Context(), deleted)
	respond(c, res, err, "")
}

func (h *QuizHandler) Get(c *gin.Context) {
	quizID, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.quizzes.GetQuizByID(c.Request.Context(), quizID)
	respond(c, res, err, "")
}
