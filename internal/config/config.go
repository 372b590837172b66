package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes read-only access to the application configuration.
// Handlers and services depend on this interface rather than the concrete
// struct so tests can substitute their own values.
type Provider interface {
	GetAddr() string
	GetAPIKeys() []string
	GetLogDir() string
	GetDataDir() string
	GetConfigDir() string
	GetPluginDir() string
	GetStaticDir() string
	GetMainRepoPath() string
	GetUIDistPath() string
	GetUIRemoteURL() string
	GetGitTimeout() time.Duration

	GetDBUrl() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
}

// Config holds all configuration for the WebUI companion service.
type Config struct {
	Addr      string
	APIKeys   []string
	LogDir    string
	DataDir   string
	ConfigDir string
	PluginDir string
	StaticDir string

	MainRepoPath string
	UIDistPath   string
	UIRemoteURL  string
	GitTimeout   time.Duration

	DBUrl  string
	DBUser string
	DBPass string
	DBNs   string
	DBDb   string
}

// New loads configuration from environment variables, reading a .env file
// first if one exists.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:         getEnv("WEBUI_ADDR", ":8095"),
		APIKeys:      splitKeys(os.Getenv("WEBUI_API_KEYS")),
		LogDir:       getEnv("WEBUI_LOG_DIR", "logs"),
		DataDir:      getEnv("WEBUI_DATA_DIR", "data"),
		ConfigDir:    getEnv("WEBUI_CONFIG_DIR", "config"),
		PluginDir:    getEnv("WEBUI_PLUGIN_DIR", "plugins"),
		StaticDir:    getEnv("WEBUI_STATIC_DIR", "web/dist"),
		MainRepoPath: getEnv("WEBUI_MAIN_REPO", "."),
		UIDistPath:   getEnv("WEBUI_UI_DIST", "web/dist"),
		UIRemoteURL:  os.Getenv("WEBUI_UI_REMOTE"),
		GitTimeout:   getDuration("WEBUI_GIT_TIMEOUT", 60*time.Second),
		DBUrl:        os.Getenv("SURREAL_URL"),
		DBUser:       os.Getenv("SURREAL_USER"),
		DBPass:       os.Getenv("SURREAL_PASS"),
		DBNs:         os.Getenv("SURREAL_NS"),
		DBDb:         os.Getenv("SURREAL_DB"),
	}

	return cfg
}

func (c *Config) GetAddr() string              { return c.Addr }
func (c *Config) GetAPIKeys() []string         { return c.APIKeys }
func (c *Config) GetLogDir() string            { return c.LogDir }
func (c *Config) GetDataDir() string           { return c.DataDir }
func (c *Config) GetConfigDir() string         { return c.ConfigDir }
func (c *Config) GetPluginDir() string         { return c.PluginDir }
func (c *Config) GetStaticDir() string         { return c.StaticDir }
func (c *Config) GetMainRepoPath() string      { return c.MainRepoPath }
func (c *Config) GetUIDistPath() string        { return c.UIDistPath }
func (c *Config) GetUIRemoteURL() string       { return c.UIRemoteURL }
func (c *Config) GetGitTimeout() time.Duration { return c.GitTimeout }
func (c *Config) GetDBUrl() string             { return c.DBUrl }
func (c *Config) GetDBUser() string            { return c.DBUser }
func (c *Config) GetDBPass() string            { return c.DBPass }
func (c *Config) GetDBNs() string              { return c.DBNs }
func (c *Config) GetDBDb() string              { return c.DBDb }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default", key, v)
		return fallback
	}
	return d
}

func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
