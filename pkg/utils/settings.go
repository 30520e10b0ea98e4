package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Supported storage backends
const (
	DatabaseMemory = "memory"
	DatabaseMySQL  = "mysql"
	DatabaseSQLite = "sqlite"
)

// Supported result cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Settings is the typed view of the service configuration
type Settings struct {
	APIPort            string
	APIKey             string
	CORSAllowedOrigins []string

	DatabaseDriver string
	MySQL          MySQLSettings
	SQLitePath     string

	CacheDriver    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ResultCacheTTL time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	SummaryModel  string
	QuizModel     string
	Temperature   float64
	AIMaxRetries  int
	PromptsPath   string

	StorageDir       string
	StagingRetention time.Duration
	StagingSweepCron string

	OCRLanguage       string
	PDFTextExtraction bool

	LogLevel  string
	LogFormat string
}

// MySQLSettings holds the connection parameters for the MySQL backend
type MySQLSettings struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// DSN builds a gorm-compatible MySQL data source name
func (m MySQLSettings) DSN() string {
	cfg := mysql.Config{
		User:                 m.User,
		Passwd:               m.Password,
		Net:                  "tcp",
		Addr:                 m.Host + ":" + m.Port,
		DBName:               m.Database,
		AllowNativePasswords: true,
		ParseTime:            true,
		Params: map[string]string{
			"charset": "utf8mb4",
		},
	}

	return cfg.FormatDSN()
}

// LoadSettings reads the typed settings from a config, applying defaults
func LoadSettings(cfg *Config) (*Settings, error) {
	s := &Settings{
		APIPort:            cfg.GetWithDefault("API_PORT", "4000"),
		APIKey:             strings.TrimSpace(cfg.Get("API_KEY")),
		CORSAllowedOrigins: splitList(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*")),

		DatabaseDriver: strings.ToLower(cfg.GetWithDefault("DATABASE_DRIVER", DatabaseMemory)),
		MySQL: MySQLSettings{
			User:     cfg.Get("MYSQL_USER"),
			Password: cfg.Get("MYSQL_PASSWORD"),
			Host:     cfg.GetWithDefault("MYSQL_HOST", "localhost"),
			Port:     cfg.GetWithDefault("MYSQL_PORT", "3306"),
			Database: cfg.Get("MYSQL_DATABASE"),
		},
		SQLitePath: cfg.GetWithDefault("SQLITE_PATH", "snapnotes.db"),

		CacheDriver:    strings.ToLower(cfg.GetWithDefault("CACHE_DRIVER", CacheMemory)),
		RedisAddr:      cfg.GetWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  cfg.Get("REDIS_PASSWORD"),
		RedisDB:        cfg.GetInt("REDIS_DB", 0),
		ResultCacheTTL: cfg.GetDuration("RESULT_CACHE_TTL", time.Hour),

		OpenAIAPIKey:  strings.TrimSpace(cfg.Get("OPENAI_API_KEY")),
		OpenAIBaseURL: cfg.Get("OPENAI_BASE_URL"),
		SummaryModel:  cfg.GetWithDefault("SUMMARY_MODEL", "gpt-4o-mini"),
		QuizModel:     cfg.GetWithDefault("QUIZ_MODEL", "gpt-4o-mini"),
		Temperature:   cfg.GetFloat("AI_TEMPERATURE", 0.7),
		AIMaxRetries:  cfg.GetInt("AI_MAX_RETRIES", 2),
		PromptsPath:   cfg.Get("PROMPTS_PATH"),

		StorageDir:       cfg.GetWithDefault("SCREENSHOT_STORAGE_DIR", "./uploads"),
		StagingRetention: cfg.GetDuration("STAGING_RETENTION", 72*time.Hour),
		StagingSweepCron: cfg.GetWithDefault("STAGING_SWEEP_CRON", "@hourly"),

		OCRLanguage:       cfg.GetWithDefault("OCR_LANGUAGE", "eng"),
		PDFTextExtraction: cfg.GetBool("PDF_TEXT_EXTRACTION", false),

		LogLevel:  cfg.GetWithDefault("LOG_LEVEL", "info"),
		LogFormat: cfg.GetWithDefault("LOG_FORMAT", "console"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks that the enumerated settings hold known values
func (s *Settings) Validate() error {
	switch s.DatabaseDriver {
	case DatabaseMemory, DatabaseSQLite:
	case DatabaseMySQL:
		if s.MySQL.User == "" || s.MySQL.Database == "" {
			return fmt.Errorf("MYSQL_USER and MYSQL_DATABASE are required when DATABASE_DRIVER is mysql")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", s.DatabaseDriver)
	}

	switch s.CacheDriver {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER %q", s.CacheDriver)
	}

	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 2, got %v", s.Temperature)
	}

	return nil
}

// AIEnabled reports whether an OpenAI credential is configured
func (s *Settings) AIEnabled() bool {
	return s.OpenAIAPIKey != ""
}

// Helper to split a comma separated list, dropping blanks
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
