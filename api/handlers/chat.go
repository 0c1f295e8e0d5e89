package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"adminchat/api/middleware"
	"adminchat/services"

	"github.com/gin-gonic/gin"
)

const serviceName = "adminchat"

// ChatHandlers содержит обработчики действий переписки
type ChatHandlers struct {
	messages  *services.MessageService
	directory *services.DirectoryService
}

func NewChatHandlers(messages *services.MessageService, directory *services.DirectoryService) *ChatHandlers {
	return &ChatHandlers{
		messages:  messages,
		directory: directory,
	}
}

// SendMessageRequest - тело запроса отправки сообщения
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// AdminFetchMessages - выборка переписки с конкретным пользователем от лица
// админа. Побочный эффект самой выборки: все адресованные админу сообщения
// этого пользователя помечаются прочитанными (до выборки, одним циклом
// запрос-ответ). since_id > 0 включает инкрементальный режим.
func (h *ChatHandlers) AdminFetchMessages(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	sinceID := sinceIDFromQuery(c)

	ctx := c.Request.Context()
	adminID, err := h.directory.AdminID(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admin"})
		return
	}
	if _, err := h.directory.GetUser(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	if _, err := h.messages.MarkRead(ctx, adminID, userID); err != nil {
		middleware.RecordChatOperation("mark_read", "error", serviceName, time.Since(start), err)
		respondError(c, err)
		return
	}
	messages, err := h.messages.ConversationSince(ctx, userID, adminID, sinceID)
	if err != nil {
		middleware.RecordChatOperation("fetch", "error", serviceName, time.Since(start), err)
		respondError(c, err)
		return
	}
	middleware.RecordChatOperation("fetch", "ok", serviceName, time.Since(start), nil)

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// UserFetchMessages - выборка собственной переписки с админом. Ничего не
// помечает прочитанным: наружу виден только счетчик непрочитанных у админа.
func (h *ChatHandlers) UserFetchMessages(c *gin.Context) {
	callerID := c.GetInt64("user_id")
	sinceID := sinceIDFromQuery(c)

	ctx := c.Request.Context()
	adminID, err := h.directory.AdminID(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admin"})
		return
	}

	start := time.Now()
	messages, err := h.messages.ConversationSince(ctx, callerID, adminID, sinceID)
	if err != nil {
		middleware.RecordChatOperation("fetch", "error", serviceName, time.Since(start), err)
		respondError(c, err)
		return
	}
	middleware.RecordChatOperation("fetch", "ok", serviceName, time.Since(start), nil)

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// UserSendMessage - отправка сообщения админу от лица пользователя
func (h *ChatHandlers) UserSendMessage(c *gin.Context) {
	callerID := c.GetInt64("user_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	adminID, err := h.directory.AdminID(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admin"})
		return
	}

	start := time.Now()
	msg, err := h.messages.Send(ctx, callerID, adminID, req.Message)
	if err != nil {
		middleware.RecordChatOperation("send", "error", serviceName, time.Since(start), err)
		respondError(c, err)
		return
	}
	middleware.RecordChatOperation("send", "ok", serviceName, time.Since(start), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Message sent", "id": msg.ID})
}

// AdminSendMessage - отправка сообщения конкретному пользователю от лица админа
func (h *ChatHandlers) AdminSendMessage(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	adminID, err := h.directory.AdminID(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admin"})
		return
	}
	if _, err := h.directory.GetUser(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	msg, err := h.messages.Send(ctx, adminID, userID, req.Message)
	if err != nil {
		middleware.RecordChatOperation("send", "error", serviceName, time.Since(start), err)
		respondError(c, err)
		return
	}
	middleware.RecordChatOperation("send", "ok", serviceName, time.Since(start), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Message sent", "id": msg.ID})
}

// AdminDeleteChat - необратимое удаление всей переписки с пользователем
func (h *ChatHandlers) AdminDeleteChat(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	adminID, err := h.directory.AdminID(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admin"})
		return
	}
	if _, err := h.directory.GetUser(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	deleted, err := h.messages.DeleteConversation(ctx, userID, adminID)
	if err != nil {
		middleware.RecordChatOperation("delete", "error", serviceName, time.Since(start), err)
		respondError(c, err)
		return
	}
	middleware.RecordChatOperation("delete", "ok", serviceName, time.Since(start), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Chat history deleted", "deleted": deleted})
}

// AdminExportChat - текстовая выгрузка переписки с пользователем как файл
func (h *ChatHandlers) AdminExportChat(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	adminID, err := h.directory.AdminID(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve admin"})
		return
	}
	user, err := h.directory.GetUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	messages, err := h.messages.Conversation(ctx, userID, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	transcript := services.ExportTranscript(user, adminID, messages, now)
	filename := services.ExportFilename(user, now)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(transcript))
}

func pathUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return 0, false
	}
	return userID, true
}

func sinceIDFromQuery(c *gin.Context) int64 {
	sinceID, err := strconv.ParseInt(c.DefaultQuery("since_id", "0"), 10, 64)
	if err != nil || sinceID < 0 {
		return 0
	}
	return sinceID
}

// respondError сопоставляет ошибки сервисного слоя с HTTP-статусами
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAuthorization):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
