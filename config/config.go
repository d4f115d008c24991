package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Credentials must never have defaults inside code; they are supplied via
// config/config.json or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	GinMode            string
	GinPath            string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Canonical timezone for all streak day comparisons.
	StreakTimezone string

	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	GoogleClientID     string
	GoogleClientSecret string

	// AI providers
	GroqAPIKey        string
	GeminiAPIKey      string
	OpenRouterAPIKey  string
	HuggingFaceAPIKey string
	OpenAIAPIKey      string
	// Astrology providers
	ProkeralaClientID     string
	ProkeralaClientSecret string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// jsonConfig mirrors config/config.json. Grouped sections keep credentials
// apart from tunables.
type jsonConfig struct {
	App struct {
		AppPort            string   `json:"AppPort"`
		JWTSecret          string   `json:"JWTSecret"`
		GinMode            string   `json:"GinMode"`
		GinPath            string   `json:"GinPath"`
		RateLimitPerMinute int      `json:"RateLimitPerMinute"`
		AllowedOrigins     []string `json:"AllowedOrigins"`
		StreakTimezone     string   `json:"StreakTimezone"`
	} `json:"app"`
	Database struct {
		DatabaseURI string `json:"DatabaseURI"`
		DBHost      string `json:"DBHost"`
		DBPort      string `json:"DBPort"`
		DBUser      string `json:"DBUser"`
		DBPassword  string `json:"DBPassword"`
		DBName      string `json:"DBName"`
	} `json:"database"`
	Redis struct {
		RedisHost     string `json:"RedisHost"`
		RedisPort     int    `json:"RedisPort"`
		RedisDB       int    `json:"RedisDB"`
		RedisPassword string `json:"RedisPassword"`
	} `json:"redis"`
	OAuth struct {
		GoogleClientID     string `json:"GoogleClientID"`
		GoogleClientSecret string `json:"GoogleClientSecret"`
	} `json:"oauth"`
	Providers struct {
		GroqAPIKey            string `json:"GroqAPIKey"`
		GeminiAPIKey          string `json:"GeminiAPIKey"`
		OpenRouterAPIKey      string `json:"OpenRouterAPIKey"`
		HuggingFaceAPIKey     string `json:"HuggingFaceAPIKey"`
		OpenAIAPIKey          string `json:"OpenAIAPIKey"`
		ProkeralaClientID     string `json:"ProkeralaClientID"`
		ProkeralaClientSecret string `json:"ProkeralaClientSecret"`
	} `json:"providers"`
	Log struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads the JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var jc jsonConfig
	if err := json.NewDecoder(f).Decode(&jc); err != nil {
		return err
	}

	out.AppPort = jc.App.AppPort
	out.JWTSecret = jc.App.JWTSecret
	out.GinMode = jc.App.GinMode
	out.GinPath = jc.App.GinPath
	out.RateLimitPerMinute = jc.App.RateLimitPerMinute
	out.AllowedOrigins = jc.App.AllowedOrigins
	out.StreakTimezone = jc.App.StreakTimezone

	out.DatabaseURI = jc.Database.DatabaseURI
	out.DBHost = jc.Database.DBHost
	out.DBPort = jc.Database.DBPort
	out.DBUser = jc.Database.DBUser
	out.DBPassword = jc.Database.DBPassword
	out.DBName = jc.Database.DBName

	out.RedisHost = jc.Redis.RedisHost
	out.RedisPort = jc.Redis.RedisPort
	out.RedisDB = jc.Redis.RedisDB
	out.RedisPassword = jc.Redis.RedisPassword

	out.GoogleClientID = jc.OAuth.GoogleClientID
	out.GoogleClientSecret = jc.OAuth.GoogleClientSecret

	out.GroqAPIKey = jc.Providers.GroqAPIKey
	out.GeminiAPIKey = jc.Providers.GeminiAPIKey
	out.OpenRouterAPIKey = jc.Providers.OpenRouterAPIKey
	out.HuggingFaceAPIKey = jc.Providers.HuggingFaceAPIKey
	out.OpenAIAPIKey = jc.Providers.OpenAIAPIKey
	out.ProkeralaClientID = jc.Providers.ProkeralaClientID
	out.ProkeralaClientSecret = jc.Providers.ProkeralaClientSecret

	out.LogLevel = jc.Log.Level
	out.LogPath = jc.Log.Path
	out.LogMaxSizeMB = jc.Log.MaxSizeMB
	out.LogMaxBackups = jc.Log.MaxBackups
	out.LogMaxAgeDays = jc.Log.MaxAgeDays
	out.LogCompress = jc.Log.Compress

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.StreakTimezone == "" {
		c.StreakTimezone = "Asia/Kolkata"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "mandir"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(v)
		}
	}

	setString("APP_PORT", &c.AppPort)
	setString("JWT_SECRET", &c.JWTSecret)
	setString("GIN_MODE", &c.GinMode)
	setString("GIN_PATH", &c.GinPath)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	setString("STREAK_TIMEZONE", &c.StreakTimezone)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}

	setString("DATABASE_URI", &c.DatabaseURI)
	setString("DB_HOST", &c.DBHost)
	setString("DB_PORT", &c.DBPort)
	setString("DB_USER", &c.DBUser)
	setString("DB_PASSWORD", &c.DBPassword)
	setString("DB_NAME", &c.DBName)

	setString("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setString("REDIS_PASSWORD", &c.RedisPassword)

	setString("GOOGLE_CLIENT_ID", &c.GoogleClientID)
	setString("GOOGLE_CLIENT_SECRET", &c.GoogleClientSecret)

	setString("GROQ_API_KEY", &c.GroqAPIKey)
	setString("GEMINI_API_KEY", &c.GeminiAPIKey)
	setString("OPENROUTER_API_KEY", &c.OpenRouterAPIKey)
	setString("HUGGINGFACE_API_KEY", &c.HuggingFaceAPIKey)
	setString("OPENAI_API_KEY", &c.OpenAIAPIKey)
	setString("PROKERALA_CLIENT_ID", &c.ProkeralaClientID)
	setString("PROKERALA_CLIENT_SECRET", &c.ProkeralaClientSecret)

	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
