package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
	Display DisplayConfig
	Refresh RefreshConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type DisplayConfig struct {
	// Locale is a BCP 47 tag used for category labels and number formatting.
	Locale string
}

type RefreshConfig struct {
	Interval time.Duration
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			Locale: "en",
		},
		Refresh: RefreshConfig{
			Interval: 5 * time.Minute,
		},
	}
}

// Load reads configuration from the platform-native backend and environment
// variables. A .env file in the working directory is loaded first; variables
// already set in the environment win over it.
//
// On macOS the backend is UserDefaults (domain: com.dietfit.cli).
// Elsewhere it is a JSON file at $XDG_CONFIG_HOME/dietfit/config.json.
//
// Environment variables (DIETFIT_*) override backend values on all platforms.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("missing required config: api.base_url (env %s)", envPrefix+"API_BASE_URL")
	}
	if cfg.API.Timeout <= 0 {
		return Config{}, fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	if cfg.Refresh.Interval <= 0 {
		return Config{}, fmt.Errorf("refresh.interval must be positive, got %s", cfg.Refresh.Interval)
	}
	return cfg, nil
}
