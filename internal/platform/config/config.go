package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        slog.Level
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CostumeSeedFile string
	PoemRecipient   string
	// ChatOriginPatterns lists extra browser origins (host patterns) allowed to open /chat.
	ChatOriginPatterns []string

	Gemini     GeminiConfig
	Redis      RedisConfig
	ChatMemory ChatMemoryConfig
	SMTP       SMTPConfig
}

// GeminiConfig configures the LLM provider. An empty APIKey disables the
// assistant endpoints; they answer 503 instead of failing at startup.
type GeminiConfig struct {
	APIKey           string
	Model            string
	Timeout          time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// RedisConfig configures the optional chat memory backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ChatMemoryConfig bounds conversation history per memory id.
type ChatMemoryConfig struct {
	MaxMessages int
	TTL         time.Duration
}

// SMTPConfig configures poem delivery. An empty Host logs emails instead of sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultModel           = "gemini-2.5-flash"
	DefaultRequestTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMemoryMessages  = 20
	DefaultMemoryTTL       = 24 * time.Hour
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:               envString("COSTUMEDESK_ADDR", DefaultAddr),
		Environment:        envString("ENVIRONMENT", "development"),
		LogLevel:           envLevel("LOG_LEVEL", slog.LevelInfo),
		RequestTimeout:     envDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		ShutdownTimeout:    envDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		CostumeSeedFile:    os.Getenv("COSTUME_SEED_FILE"),
		PoemRecipient:      envString("POEM_RECIPIENT", "poems@example.com"),
		ChatOriginPatterns: envList("CHAT_ORIGIN_PATTERNS"),
		Gemini: GeminiConfig{
			APIKey:           os.Getenv("GEMINI_API_KEY"),
			Model:            envString("GEMINI_MODEL", DefaultModel),
			Timeout:          envDuration("GEMINI_TIMEOUT", 45*time.Second),
			FailureThreshold: envInt("GEMINI_BREAKER_FAILURES", 5),
			Cooldown:         envDuration("GEMINI_BREAKER_COOLDOWN", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		ChatMemory: ChatMemoryConfig{
			MaxMessages: envInt("CHAT_MEMORY_MAX_MESSAGES", DefaultMemoryMessages),
			TTL:         envDuration("CHAT_MEMORY_TTL", DefaultMemoryTTL),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envString("SMTP_FROM", "costumes@example.com"),
		},
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Unparseable numbers and durations fall back to the default rather than
// aborting startup, matching how TTL overrides were handled before.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func envLevel(key string, def slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return def
	}
	return lvl
}
