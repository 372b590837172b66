package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neo-mofox/webui/internal/middleware"
)

// RegisterRoutes mounts the API and the static UI.
func (s *Server) RegisterRoutes() {
	e := s.E

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})

	// The wallpaper image is fetched from an <img> tag and cannot carry a
	// header, so it stays outside the auth group.
	e.GET("/api/settings/wallpaper/image", s.settingsHandler.WallpaperImageGet)

	api := e.Group("/api", middleware.APIKeyAuth(s.Cfg.GetAPIKeys()))

	live := api.Group("/live_chat")
	live.GET("/ws", s.liveChatHandler.ServeWS)
	live.GET("/streams", s.liveChatHandler.StreamsGet)
	live.GET("/messages/:stream_id", s.liveChatHandler.MessagesGet)
	live.POST("/send", s.liveChatHandler.SendPost)

	logs := api.Group("/logs")
	logs.GET("/ws", s.logHandler.ServeWS)
	logs.GET("/files", s.logHandler.FilesGet)
	logs.GET("/search", s.logHandler.SearchGet)
	logs.GET("/loggers", s.logHandler.LoggersGet)
	logs.GET("/stats", s.logHandler.StatsGet)

	room := api.Group("/chatroom")
	room.GET("/users", s.chatroomHandler.UsersGet)
	room.POST("/users", s.chatroomHandler.UsersPost)
	room.PUT("/users/:id", s.chatroomHandler.UserPut)
	room.DELETE("/users/:id", s.chatroomHandler.UserDelete)
	room.POST("/users/:id/reset", s.chatroomHandler.UserResetPost)
	room.GET("/copyable_users", s.chatroomHandler.CopyableUsersGet)
	room.GET("/messages", s.chatroomHandler.MessagesGet)
	room.GET("/messages/:message_id", s.chatroomHandler.MessageGet)
	room.POST("/send", s.chatroomHandler.SendPost)
	room.GET("/poll", s.chatroomHandler.PollGet)

	conf := api.Group("/config")
	conf.GET("/plugins", s.configHandler.PluginsGet)
	conf.GET("/plugins/:plugin", s.configHandler.PluginFilesGet)
	conf.GET("/plugins/:plugin/:file/raw", s.configHandler.PluginRawGet)
	conf.POST("/plugins/:plugin/:file/raw", s.configHandler.PluginRawPost)
	conf.GET("/plugins/:plugin/:file/backups", s.configHandler.PluginBackupsGet)
	conf.POST("/plugins/:plugin/:file/backups/:backup/restore", s.configHandler.PluginRestorePost)
	conf.GET("/:name/raw", s.configHandler.RawGet)
	conf.POST("/:name/raw", s.configHandler.RawPost)
	conf.GET("/:name", s.configHandler.ParsedGet)
	conf.PUT("/:name", s.configHandler.ParsedPut)
	conf.GET("/:name/backups", s.configHandler.BackupsGet)
	conf.POST("/:name/backups/:backup/restore", s.configHandler.RestorePost)

	gitEnv := api.Group("/git_env")
	gitEnv.GET("/status", s.gitEnvHandler.StatusGet)
	gitEnv.POST("/path", s.gitEnvHandler.PathPost)
	gitEnv.POST("/auto_detect", s.gitEnvHandler.AutoDetectPost)
	gitEnv.GET("/install_guide", s.gitEnvHandler.InstallGuideGet)

	upd := api.Group("/update")
	upd.GET("/status", s.updateHandler.StatusGet)
	upd.GET("/check", s.updateHandler.CheckGet)
	upd.POST("/update", s.updateHandler.UpdatePost)
	upd.GET("/current", s.updateHandler.CurrentGet)
	upd.POST("/rollback", s.updateHandler.RollbackPost)
	upd.GET("/ui/check", s.updateHandler.UICheckGet)
	upd.POST("/ui/install", s.updateHandler.UIInstallPost)
	upd.GET("/ui/history", s.updateHandler.UIHistoryGet)
	upd.POST("/ui/rollback", s.updateHandler.UIRollbackPost)

	st := api.Group("/stats")
	st.GET("/overview", s.statsHandler.OverviewGet)
	st.GET("/message-stats", s.statsHandler.MessageStatsGet)
	st.GET("/chat-stats", s.statsHandler.ChatStatsGet)
	st.GET("/daily-quote", s.statsHandler.DailyQuoteGet)

	system := api.Group("/system")
	system.POST("/restart", s.statsHandler.RestartPost)
	system.POST("/shutdown", s.statsHandler.ShutdownPost)

	set := api.Group("/settings")
	set.POST("/wallpaper", s.settingsHandler.WallpaperPost)
	set.DELETE("/wallpaper", s.settingsHandler.WallpaperDelete)
	set.GET("/:key", s.settingsHandler.KeyGet)
	set.PUT("/:key", s.settingsHandler.KeyPut)

	// The bundled web UI.
	e.Static("/", s.Cfg.GetStaticDir())
}
