package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/domain"
)

type QuizHandler struct {
	quizzes *app.QuizService
}

func NewQuizHandler(quizzes *app.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Mutations carry the query of the screen they were made from so the
// refreshed view matches what the user is looking at.
type createQuizzesRequest struct {
	domain.BulkQuizInput
	Question string        `json:"quizQuestion"`
	Options  []string      `json:"quizOptions"`
	Answer   string        `json:"quizAnswer"`
	Points   float64       `json:"quizPoint"`
	IsActive *bool         `json:"isActive,omitempty"`
	Query    app.ListQuery `json:"query"`
}

// single reports whether the body is one question rather than a bulk list.
func (r createQuizzesRequest) single() bool {
	return len(r.Quizzes) == 0 && (r.Question != "" || len(r.Options) > 0 || r.Answer != "")
}

type updateQuizRequest struct {
	domain.QuizInput
	Query app.ListQuery `json:"query"`
}

func (h *QuizHandler) List(c *gin.Context) {
	var q app.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query")
		return
	}
	view, err := h.quizzes.View(c.Request.Context(), currentSession(c), q)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

// Create accepts either a bulk payload with a quizzes list or the fields of a
// single question.
func (h *QuizHandler) Create(c *gin.Context) {
	var req createQuizzesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	var (
		result app.Mutation[domain.QuizQuestion, app.QuizPageView]
		err    error
	)
	if req.single() {
		result, err = h.quizzes.Create(c.Request.Context(), currentSession(c), domain.QuizInput{
			CategoryID: req.CategoryID,
			Question:   req.Question,
			Options:    req.Options,
			Answer:     req.Answer,
			Points:     req.Points,
			IsActive:   req.IsActive,
		}, req.Query)
	} else {
		result, err = h.quizzes.CreateBulk(c.Request.Context(), currentSession(c), req.BulkQuizInput, req.Query)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Quiz created successfully", result)
}

func (h *QuizHandler) Update(c *gin.Context) {
	var req updateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	result, err := h.quizzes.Update(c.Request.Context(), currentSession(c), c.Param("id"), req.QuizInput, req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Quiz updated successfully", result)
}

func (h *QuizHandler) Delete(c *gin.Context) {
	var q app.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query")
		return
	}
	result, err := h.quizzes.Delete(c.Request.Context(), currentSession(c), c.Param("id"), q)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Quiz deleted successfully", result)
}
