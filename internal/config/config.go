package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/satisfaction-radar/internal/survey"
)

// Data source kinds accepted in DATA_SOURCE.
const (
	SourceXLSX    = "xlsx"
	SourceSQL     = "sql"
	SourceGSheets = "gsheets"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string

	DataSource  string
	WorkbookDir string
	DBPath      string
	DBDriver    string

	GoogleCredentialsFile string
	SpreadsheetIDs        map[string]string

	RedisAddr string
	CacheTTL  time.Duration

	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPPort              int
	CORSAllowedOrigins    []string

	JoinScope survey.JoinScope
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	joinScope, err := survey.ParseJoinScope(getEnv("DIRECTORY_JOIN_SCOPE", "always"))
	if err != nil {
		return nil, err
	}

	ids, err := ParseSpreadsheetIDs(os.Getenv("SHEETS_SPREADSHEET_IDS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DataSource:            strings.ToLower(getEnv("DATA_SOURCE", SourceXLSX)),
		WorkbookDir:           getEnv("WORKBOOK_DIR", "./data"),
		DBPath:                getEnv("DB_PATH", "./data/surveys.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		SpreadsheetIDs:        ids,
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		CacheTTL:              getDuration("CACHE_TTL", 0),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		HTTPPort:              getInt("HTTP_PORT", 8080),
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		JoinScope:             joinScope,
	}

	switch cfg.DataSource {
	case SourceXLSX, SourceSQL, SourceGSheets:
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q: want %s, %s or %s",
			cfg.DataSource, SourceXLSX, SourceSQL, SourceGSheets)
	}
	if cfg.DataSource == SourceGSheets && len(cfg.SpreadsheetIDs) == 0 {
		return nil, fmt.Errorf("DATA_SOURCE=%s requires SHEETS_SPREADSHEET_IDS", SourceGSheets)
	}

	return cfg, nil
}

// ParseSpreadsheetIDs parses "Workbook=ID;Other=ID2" into a workbook → ID map.
func ParseSpreadsheetIDs(raw string) (map[string]string, error) {
	ids := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, id, ok := strings.Cut(pair, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			return nil, fmt.Errorf("invalid spreadsheet mapping %q: want Workbook=ID", pair)
		}
		ids[name] = id
	}
	return ids, nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("10m") or bare seconds ("600").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
