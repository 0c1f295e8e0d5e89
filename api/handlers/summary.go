package handlers

import (
	"net/http"

	"adminchat/services"

	"github.com/gin-gonic/gin"
)

// SummaryHandlers содержит обработчики админского списка пользователей
type SummaryHandlers struct {
	summaries *services.SummaryService
	directory *services.DirectoryService
}

func NewSummaryHandlers(summaries *services.SummaryService, directory *services.DirectoryService) *SummaryHandlers {
	return &SummaryHandlers{
		summaries: summaries,
		directory: directory,
	}
}

// ListSummaries возвращает отсортированный список всех не-админов со
// временем последней активности и числом непрочитанных
func (h *SummaryHandlers) ListSummaries(c *gin.Context) {
	ctx := c.Request.Context()
	adminID, err := h.directory.AdminID(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admin"})
		return
	}

	summaries, err := h.summaries.ListSummaries(ctx, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": summaries})
}
