package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"
	"github.com/surrealdb/surrealdb.go"

	"github.com/neo-mofox/webui/internal/chatroom"
	"github.com/neo-mofox/webui/internal/confedit"
	"github.com/neo-mofox/webui/internal/config"
	"github.com/neo-mofox/webui/internal/database"
	"github.com/neo-mofox/webui/internal/gitenv"
	"github.com/neo-mofox/webui/internal/livechat"
	"github.com/neo-mofox/webui/internal/logging"
	"github.com/neo-mofox/webui/internal/logviewer"
	"github.com/neo-mofox/webui/internal/middleware"
	"github.com/neo-mofox/webui/internal/pubsub"
	"github.com/neo-mofox/webui/internal/settings"
	"github.com/neo-mofox/webui/internal/stats"
	"github.com/neo-mofox/webui/internal/update"
	"github.com/neo-mofox/webui/internal/ws"
)

// CustomValidator adapts go-playground/validator to echo's Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates a bound request struct.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Server owns the HTTP server and every component behind it.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	DB       *surrealdb.DB
	Registry *ws.Registry
	Bus      *pubsub.WatermillBridge

	liveChatHandler *livechat.Handler
	liveChatBridge  *livechat.Bridge
	logHandler      *logviewer.Handler
	logBridge       *logviewer.Bridge
	chatroomHandler *chatroom.Handler
	chatroomAdapter *chatroom.Adapter
	configHandler   *confedit.Handler
	configWatcher   *confedit.Watcher
	settingsHandler *settings.Handler
	gitEnvHandler   *gitenv.Handler
	updateHandler   *update.Handler
	statsHandler    *stats.Handler
}

// New builds the full dependency graph.
func New() *Server {
	cfg := config.New()
	baseHandler := logging.New()

	bus := pubsub.NewWatermillBridge()
	registry := ws.NewRegistry()

	// Every log record also goes onto the bus; the log bridge pushes it to
	// realtime log subscribers.
	emitHandler := logging.NewEmitHandler(baseHandler, func(entry logging.Entry) {
		payload, err := json.Marshal(entry)
		if err != nil {
			return
		}
		_ = bus.Publish(context.Background(), pubsub.Message{
			Topic:   pubsub.TopicLogEmitted,
			Payload: payload,
		})
	})
	slog.SetDefault(slog.New(emitHandler))

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	streamStore := database.NewStreamStore(db)
	messageStore := database.NewMessageStore(db)
	personStore := database.NewPersonStore(db)

	fs := afero.NewOsFs()

	liveChatHandler := livechat.NewHandler(registry, streamStore, messageStore, bus)
	liveChatBridge := livechat.NewBridge(bus, registry)

	logStore := logviewer.NewStore(fs, cfg.GetLogDir())
	logHandler := logviewer.NewHandler(logStore, registry)
	logBridge := logviewer.NewBridge(bus, registry)

	userDir := cfg.GetDataDir() + "/chatroom/users"
	chatStorage := chatroom.NewStorage(fs, userDir, personStore)
	chatAdapter := chatroom.NewAdapter(bus)
	chatroomHandler := chatroom.NewHandler(chatStorage, chatAdapter, streamStore, messageStore)

	configStores := map[string]*confedit.FileStore{
		"core": confedit.NewFileStore(fs,
			cfg.GetConfigDir()+"/bot_config.toml", cfg.GetConfigDir()+"/backups"),
		"model": confedit.NewFileStore(fs,
			cfg.GetConfigDir()+"/model_config.toml", cfg.GetConfigDir()+"/backups"),
	}
	pluginStore := confedit.NewPluginStore(fs, cfg.GetPluginDir())
	configHandler := confedit.NewHandler(configStores, pluginStore)
	configWatcher := confedit.NewWatcher(registry, cfg.GetConfigDir(), cfg.GetPluginDir())

	settingsStore := settings.NewStore(fs, cfg.GetDataDir()+"/settings")
	wallpaper := settings.NewWallpaper(fs, cfg.GetDataDir())
	settingsHandler := settings.NewHandler(settingsStore, wallpaper)

	gitEnv := gitenv.NewManager(settingsStore, cfg.GetMainRepoPath())
	gitEnvHandler := gitenv.NewHandler(gitEnv)

	updateManager := update.NewManager(gitEnv, cfg.GetMainRepoPath(), cfg.GetGitTimeout())
	uiManager := update.NewUIManager(gitEnv, settingsStore,
		cfg.GetUIDistPath(), cfg.GetUIRemoteURL(), cfg.GetGitTimeout())
	updateHandler := update.NewHandler(updateManager, uiManager)

	collector := stats.NewCollector(streamStore, messageStore, personStore)
	statsHandler := stats.NewHandler(collector)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	return &Server{
		E:               e,
		Cfg:             cfg,
		DB:              db,
		Registry:        registry,
		Bus:             bus,
		liveChatHandler: liveChatHandler,
		liveChatBridge:  liveChatBridge,
		logHandler:      logHandler,
		logBridge:       logBridge,
		chatroomHandler: chatroomHandler,
		chatroomAdapter: chatAdapter,
		configHandler:   configHandler,
		configWatcher:   configWatcher,
		settingsHandler: settingsHandler,
		gitEnvHandler:   gitEnvHandler,
		updateHandler:   updateHandler,
		statsHandler:    statsHandler,
	}
}

// StartBridges subscribes the bus consumers and the config watcher. They stop
// when ctx is cancelled.
func (s *Server) StartBridges(ctx context.Context) error {
	if err := s.liveChatBridge.Start(ctx); err != nil {
		return err
	}
	if err := s.logBridge.Start(ctx); err != nil {
		return err
	}
	if err := s.chatroomAdapter.Start(ctx, s.Bus); err != nil {
		return err
	}
	return s.configWatcher.Start(ctx)
}
