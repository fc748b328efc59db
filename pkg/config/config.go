package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the media service
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Upload   UploadConfig   `yaml:"upload"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// UploadConfig holds the chunked upload pipeline settings
type UploadConfig struct {
	// TempDir holds chunk fragments and reassembled files before transcoding
	TempDir string `yaml:"temp_dir"`
	// MediaRoot is the base directory for final transcoded assets
	MediaRoot      string        `yaml:"media_root"`
	ChunkSize      int64         `yaml:"chunk_size"`
	MaxFileSize    int64         `yaml:"max_file_size"`
	SessionTimeout time.Duration `yaml:"session_timeout"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	CompletionTTL  time.Duration `yaml:"completion_ttl"`
}

// CacheConfig holds the TTLs for the in-memory read-through caches
type CacheConfig struct {
	UserTTL          time.Duration `yaml:"user_ttl"`
	ServicesTTL      time.Duration `yaml:"services_ttl"`
	ProjectImagesTTL time.Duration `yaml:"project_images_ttl"`
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTExpiration time.Duration `yaml:"jwt_expiration"`
	BCryptCost    int           `yaml:"bcrypt_cost"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "mediakit"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "mediakit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Upload: UploadConfig{
			TempDir:        getEnv("UPLOAD_TEMP_DIR", "./temp/chunks"),
			MediaRoot:      getEnv("UPLOAD_MEDIA_ROOT", "./public"),
			ChunkSize:      getEnvInt64("UPLOAD_CHUNK_SIZE", 1024*1024),
			MaxFileSize:    getEnvInt64("UPLOAD_MAX_FILE_SIZE", 5*1024*1024),
			SessionTimeout: getEnvDuration("UPLOAD_SESSION_TIMEOUT", time.Hour),
			SweepInterval:  getEnvDuration("UPLOAD_SWEEP_INTERVAL", 10*time.Minute),
			CompletionTTL:  getEnvDuration("UPLOAD_COMPLETION_TTL", 5*time.Minute),
		},
		Cache: CacheConfig{
			UserTTL:          getEnvDuration("CACHE_USER_TTL", 5*time.Minute),
			ServicesTTL:      getEnvDuration("CACHE_SERVICES_TTL", 5*time.Minute),
			ProjectImagesTTL: getEnvDuration("CACHE_PROJECT_IMAGES_TTL", time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
			JWTExpiration: getEnvDuration("JWT_EXPIRATION", 24*time.Hour),
			BCryptCost:    getEnvInt("BCRYPT_COST", 12),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// DatabaseURL returns a PostgreSQL connection string
func (d *DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
