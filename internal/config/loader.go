package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the eventshare client.
type Config struct {
	APIBaseURL      string
	FaceAPIBaseURL  string
	StoreDSN        string
	StorePassphrase string
	HTTPTimeout     time.Duration
	LogLevel        slog.Level
	LogFormat       string
	DownloadDir     string
}

// MemoryDSN selects the in-memory local storage instead of SQLite.
const MemoryDSN = "memory"

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Every malformed value is collected and
// reported in a single error so a user can fix them in one pass.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:     "http://localhost:5000",
		FaceAPIBaseURL: "http://localhost:8080/",
		StoreDSN:       "file:eventshare.db",
		HTTPTimeout:    60 * time.Second,
		LogLevel:       slog.LevelInfo,
		LogFormat:      "json",
		DownloadDir:    ".",
	}

	invalid := make([]string, 0, 4)

	if value := strings.TrimSpace(os.Getenv("EVENTSHARE_API_BASE_URL")); value != "" {
		if !validBaseURL(value) {
			invalid = append(invalid, "EVENTSHARE_API_BASE_URL")
		} else {
			cfg.APIBaseURL = strings.TrimRight(value, "/")
		}
	}

	if value := strings.TrimSpace(os.Getenv("EVENTSHARE_FACE_API_BASE_URL")); value != "" {
		if !validBaseURL(value) {
			invalid = append(invalid, "EVENTSHARE_FACE_API_BASE_URL")
		} else {
			cfg.FaceAPIBaseURL = value
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("EVENTSHARE_STORE_DSN")); dsn != "" {
		cfg.StoreDSN = dsn
	}

	// Passphrases are taken verbatim; surrounding spaces are significant.
	cfg.StorePassphrase = os.Getenv("EVENTSHARE_STORE_PASSPHRASE")

	if value := strings.TrimSpace(os.Getenv("EVENTSHARE_HTTP_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "EVENTSHARE_HTTP_TIMEOUT")
		} else {
			cfg.HTTPTimeout = timeout
		}
	}

	if value := strings.TrimSpace(os.Getenv("EVENTSHARE_LOG_LEVEL")); value != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, "EVENTSHARE_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if value := strings.ToLower(strings.TrimSpace(os.Getenv("EVENTSHARE_LOG_FORMAT"))); value != "" {
		switch value {
		case "json", "text":
			cfg.LogFormat = value
		default:
			invalid = append(invalid, "EVENTSHARE_LOG_FORMAT")
		}
	}

	if dir := strings.TrimSpace(os.Getenv("EVENTSHARE_DOWNLOAD_DIR")); dir != "" {
		cfg.DownloadDir = dir
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// UsesMemoryStore reports whether the configuration selects the in-memory store.
func (c Config) UsesMemoryStore() bool {
	return strings.EqualFold(c.StoreDSN, MemoryDSN)
}

func validBaseURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
