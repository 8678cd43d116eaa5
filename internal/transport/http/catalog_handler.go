package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/domain"
)

const maxUploadBytes = 5 << 20

type CatalogHandler struct {
	catalog *app.CatalogService
}

func NewCatalogHandler(catalog *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	view, err := h.catalog.Categories(c.Request.Context(), currentSession(c), page, c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	in, err := bindCategory(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.catalog.CreateCategory(c.Request.Context(), currentSession(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", result)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	in, err := bindCategory(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.catalog.UpdateCategory(c.Request.Context(), currentSession(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", result)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	result, err := h.catalog.DeleteCategory(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", result)
}

func (h *CatalogHandler) ListPlans(c *gin.Context) {
	view, err := h.catalog.Plans(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

func (h *CatalogHandler) CreatePlan(c *gin.Context) {
	var in domain.SubscriptionPlanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	result, err := h.catalog.CreatePlan(c.Request.Context(), currentSession(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Subscription plan created successfully", result)
}

func (h *CatalogHandler) UpdatePlan(c *gin.Context) {
	var in domain.SubscriptionPlanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	result, err := h.catalog.UpdatePlan(c.Request.Context(), currentSession(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Subscription plan updated successfully", result)
}

func (h *CatalogHandler) DeletePlan(c *gin.Context) {
	result, err := h.catalog.DeletePlan(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Subscription plan deleted successfully", result)
}

func (h *CatalogHandler) ListJokes(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	view, err := h.catalog.Jokes(c.Request.Context(), currentSession(c), page)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

func (h *CatalogHandler) CreateJoke(c *gin.Context) {
	in, err := bindJoke(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.catalog.CreateJoke(c.Request.Context(), currentSession(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Joke created successfully", result)
}

func (h *CatalogHandler) UpdateJoke(c *gin.Context) {
	in, err := bindJoke(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.catalog.UpdateJoke(c.Request.Context(), currentSession(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Joke updated successfully", result)
}

func (h *CatalogHandler) DeleteJoke(c *gin.Context) {
	result, err := h.catalog.DeleteJoke(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "Joke deleted successfully", result)
}

// bindCategory reads the category form from multipart/form-data (with an
// optional quizCategoryImage file) or from a JSON body.
func bindCategory(c *gin.Context) (domain.CategoryInput, error) {
	var in domain.CategoryInput
	if !isForm(c) {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, domain.NewValidationError("_", "Invalid request body")
		}
		return in, nil
	}

	fields := map[string]string{}
	in.Name = strings.TrimSpace(c.PostForm("quizCategoryName"))
	in.State = strings.TrimSpace(c.PostForm("quizCategoryState"))
	in.Details = strings.TrimSpace(c.PostForm("quizCategoryDetails"))
	in.Points = formNumber(c, fields, "quizPoint", "Point must be a number")
	in.TotalTime = formNumber(c, fields, "quizTotalTime", "Time must be a number")
	image, err := formUpload(c, "quizCategoryImage")
	if err != nil {
		fields["quizCategoryImage"] = err.Error()
	}
	in.Image = image
	if len(fields) > 0 {
		return in, &domain.ValidationError{Fields: fields}
	}
	return in, nil
}

func bindJoke(c *gin.Context) (domain.JokeInput, error) {
	var in domain.JokeInput
	if !isForm(c) {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, domain.NewValidationError("_", "Invalid request body")
		}
		return in, nil
	}
	in.Text = strings.TrimSpace(c.PostForm("text"))
	in.Answer = strings.TrimSpace(c.PostForm("jokeAnswer"))
	image, err := formUpload(c, "jokeImage")
	if err != nil {
		return in, domain.NewValidationError("jokeImage", err.Error())
	}
	in.Image = image
	return in, nil
}

func isForm(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == gin.MIMEMultipartPOSTForm || ct == gin.MIMEPOSTForm
}

func formNumber(c *gin.Context, fields map[string]string, name, message string) float64 {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fields[name] = message
		return 0
	}
	return v
}

// formUpload returns nil when the part is absent.
func formUpload(c *gin.Context, name string) (*domain.Upload, error) {
	header, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("Invalid file upload")
	}
	if header.Size > maxUploadBytes {
		return nil, errors.New("Image must be 5MB or smaller")
	}
	f, err := header.Open()
	if err != nil {
		return nil, errors.New("Invalid file upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, errors.New("Invalid file upload")
	}
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
