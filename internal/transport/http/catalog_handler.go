package http

import (
	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves category, question and answer administration.
type CatalogHandler struct {
	categories *app.CategoryService
	questions  *app.QuestionService
	answers    *app.AnswerService
}

func NewCatalogHandler(categories *app.CategoryService, questions *app.QuestionService, answers *app.AnswerService) *CatalogHandler {
	return &CatalogHandler{categories: categories, questions: questions, answers: answers}
}

type categoryRequest struct {
	CategoryName string `json:"categoryName" binding:"required,max=255"`
	IsDeleted    bool   `json:"isDeleted"`
}

type categoryResponse struct {
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	IsDeleted    bool   `json:"isDeleted"`
	CreatedBy    string `json:"createdBy"`
	UpdatedBy    string `json:"updatedBy"`
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{
		CategoryID:   c.ID,
		CategoryName: c.Name,
		IsDeleted:    c.IsDeleted,
		CreatedBy:    c.CreatedBy,
		UpdatedBy:    c.UpdatedBy,
	}
}

type answerData struct {
	AnswerContent string `json:"answerContent" binding:"required"`
	Correct       bool   `json:"correct"`
}

type questionRequest struct {
	QuizID       int64        `json:"quizId" binding:"required,gt=0"`
	QuestionType string       `json:"questionType" binding:"required,oneof=SINGLE_CHOICE MULTIPLE_CHOICE"`
	QuestionName string       `json:"questionName" binding:"required"`
	Answers      []answerData `json:"answers" binding:"required,min=1,dive"`
}

type answerRequest struct {
	QuestionID    int64  `json:"questionId" binding:"required,gt=0"`
	AnswerContent string `json:"answerContent" binding:"required"`
	Correct       bool   `json:"correct"`
}

func (h *CatalogHandler) AddCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.categories.AddCategory(c.Request.Context(), username(c), req.CategoryName)
	respond(c, toCategoryResponse(res), err, "Add category success")
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.categories.UpdateCategory(c.Request.Context(), username(c), id, req.CategoryName, req.IsDeleted)
	respond(c, toCategoryResponse(res), err, "Update category success")
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.categories.DeleteCategory(c.Request.Context(), username(c), id)
	respond(c, toCategoryResponse(res), err, "Delete category success")
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	list, err := h.categories.FindAllCategory(c.Request.Context())
	out := make([]categoryResponse, 0, len(list))
	for _, cat := range list {
		out = append(out, toCategoryResponse(cat))
	}
	respond(c, out, err, "")
}

func (h *CatalogHandler) AddQuestion(c *gin.Context) {
	var req questionRequest
	if !bindJSON(c, &req) {
		return
	}
	answers := make([]app.AnswerData, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, app.AnswerData{Content: a.AnswerContent, Correct: a.Correct})
	}
	res, err := h.questions.AddQuestion(c.Request.Context(), app.AddQuestionRequest{
		Username:     username(c),
		QuizID:       req.QuizID,
		QuestionType: domain.QuestionType(req.QuestionType),
		QuestionName: req.QuestionName,
		Answers:      answers,
	})
	respond(c, res, err, "Add question success")
}

func (h *CatalogHandler) GetQuestion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.questions.GetQuestionByID(c.Request.Context(), id)
	respond(c, res, err, "")
}

func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	quizID, ok := idParam(c, "quizId")
	if !ok {
		return
	}
	res, err := h.questions.FindAllQuestionByQuiz(c.Request.Context(), quizID)
	respond(c, res, err, "")
}

func (h *CatalogHandler) DeleteQuestion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.questions.DeleteQuestion(c.Request.Context(), username(c), id)
	respond(c, res, err, "Delete question success")
}

func (h *CatalogHandler) AddAnswer(c *gin.Context) {
	var req answerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.answers.AddAnswer(c.Request.Context(), app.AddAnswerRequest{
		Username:   username(c),
		QuestionID: req.QuestionID,
		Content:    req.AnswerContent,
		Correct:    req.Correct,
	})
	respond(c, res, err, "Add answer success")
}

func (h *CatalogHandler) UpdateAnswer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req answerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.answers.UpdateAnswer(c.Request.Context(), app.UpdateAnswerRequest{
		Username:   username(c),
		QuestionID: req.QuestionID,
		AnswerID:   id,
		Content:    req.AnswerContent,
		Correct:    req.Correct,
	})
	respond(c, res, err, "Update answer success")
}

func (h *CatalogHandler) DeleteAnswer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.answers.DeleteAnswer(c.Request.Context(), username(c), id)
	respond(c, res, err, "Delete answer success")
}

func (h *CatalogHandler) GetAnswer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.answers.GetAnswerByID(c.Request.Context(), id)
	respond(c, res, err, "")
}

func (h *CatalogHandler) ListAnswers(c *gin.Context) {
	questionID, ok := idParam(c, "questionId")
	if !ok {
		return
	}
	res, err := h.answers.FindAllAnswerByQuestion(c.Request.Context(), questionID)
	respond(c, res, err, "")
}
