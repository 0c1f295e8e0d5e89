package routes

import (
	"adminchat/api/handlers"
	"adminchat/api/middleware"
	"adminchat/services"

	"github.com/gin-gonic/gin"
)

// ChatApi регистрирует маршруты переписки. Пользовательская поверхность
// доступна любому аутентифицированному вызывающему, админская - только
// носителю админской роли.
func ChatApi(router *gin.Engine, messages *services.MessageService, summaries *services.SummaryService, directory *services.DirectoryService) {
	chatHandlers := handlers.NewChatHandlers(messages, directory)
	summaryHandlers := handlers.NewSummaryHandlers(summaries, directory)

	api := router.Group("/api/v1/", middleware.CallerAuthMiddleware(directory))

	userEndpoints := api.Group("chat/")
	{
		userEndpoints.GET("messages", chatHandlers.UserFetchMessages)
		userEndpoints.POST("send", chatHandlers.UserSendMessage)
	}

	adminEndpoints := api.Group("admin/", middleware.RequireAdmin())
	{
		adminEndpoints.GET("chats", summaryHandlers.ListSummaries)
		adminEndpoints.GET("chats/:user_id/messages", chatHandlers.AdminFetchMessages)
		adminEndpoints.POST("chats/:user_id/send", chatHandlers.AdminSendMessage)
		adminEndpoints.DELETE("chats/:user_id", chatHandlers.AdminDeleteChat)
		adminEndpoints.GET("chats/:user_id/export", chatHandlers.AdminExportChat)
	}
}
