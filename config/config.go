package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultAPIBaseURL = "https://api.moodflix.app"
	defaultPort       = 8980
)

// Config holds the externally supplied settings for the gateway. The two
// secrets (Kakao app key and API base URL) are opaque environment strings.
type Config struct {
	APIBaseURL  string
	KakaoAppKey string
	RedirectURL string
	DataDir     string
	LogDir      string
	Port        int
}

// Load reads configuration from the environment, falling back to defaults.
func Load() Config {
	cfg := Config{
		APIBaseURL:  envOr("MOODFLIX_API_URL", defaultAPIBaseURL),
		KakaoAppKey: os.Getenv("KAKAO_APP_KEY"),
		RedirectURL: os.Getenv("KAKAO_REDIRECT_URL"),
		DataDir:     os.Getenv("MOODFLIX_DATA_DIR"),
		LogDir:      os.Getenv("MOODFLIX_LOG_DIR"),
		Port:        defaultPort,
	}

	if portStr := os.Getenv("MOODFLIX_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		}
	}

	if cfg.DataDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			cfg.DataDir = filepath.Join(base, "moodflix")
		} else {
			cfg.DataDir = "data"
		}
	}

	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost:" + strconv.Itoa(cfg.Port) + "/auth/kakao"
	}

	return cfg
}

// KakaoEnabled reports whether Kakao login is configured. A missing app key
// disables login instead of crashing the gateway.
func (c Config) KakaoEnabled() bool {
	return c.KakaoAppKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
