package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz-admin-console/internal/app"
)

type DirectoryHandler struct {
	directory *app.DirectoryService
	audit     app.AuditLog
}

func NewDirectoryHandler(directory *app.DirectoryService, audit app.AuditLog) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, audit: audit}
}

func (h *DirectoryHandler) Users(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	view, err := h.directory.Users(c.Request.Context(), currentSession(c), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

func (h *DirectoryHandler) Ranking(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	view, err := h.directory.Ranking(c.Request.Context(), currentSession(c), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

// Audit lists recent console mutations.
func (h *DirectoryHandler) Audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", entries)
}
