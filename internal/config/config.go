package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Storage       StorageConfig       `yaml:"storage"`
	AI            AIConfig            `yaml:"ai"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rateLimit"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	CORSOrigins  []string      `yaml:"corsOrigins"`
	// MaxUploadMB bounds multipart bodies on POST /customers/{id}/files.
	MaxUploadMB int64 `yaml:"maxUploadMB"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql | postgres | memory
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Migrate  bool   `yaml:"migrate"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"` // minio | s3 | memory
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSSL"`
	PathStyle bool   `yaml:"pathStyle"`
}

type AIConfig struct {
	Provider    string        `yaml:"provider"` // openai | gemini
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseURL"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
	// Schema selects the briefing layout: five-part.v2 or flat.v1.
	Schema string `yaml:"schema"`
}

type TranscriptionConfig struct {
	Provider      string        `yaml:"provider"` // openai | whisper
	APIKey        string        `yaml:"apiKey"`
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"maxConcurrent"`
}

type AuthConfig struct {
	// APIKeys maps user id to API key.
	APIKeys map[string]string `yaml:"apiKeys"`
	// TrustedHeader, when set, carries the user id injected by an upstream auth proxy.
	TrustedHeader string `yaml:"trustedHeader"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// Load reads a YAML config file, applies env overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes the same way Load does.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	switch c.AI.Provider {
	case "gemini":
		override(&c.AI.APIKey, "GEMINI_API_KEY")
	default:
		override(&c.AI.APIKey, "OPENAI_API_KEY")
	}
	if c.Transcription.Provider != "whisper" {
		override(&c.Transcription.APIKey, "OPENAI_API_KEY")
	}
	override(&c.Transcription.Endpoint, "WHISPER_API_URL")
	override(&c.Database.Password, "DATABASE_PASSWORD")
	override(&c.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	override(&c.Storage.SecretKey, "STORAGE_SECRET_KEY")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 180 * time.Second
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 50
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "minio"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.7
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 4096
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 120 * time.Second
	}
	if c.AI.Schema == "" {
		c.AI.Schema = "five-part.v2"
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "openai"
	}
	if c.Transcription.Timeout == 0 {
		c.Transcription.Timeout = 5 * time.Minute
	}
	if c.Transcription.MaxConcurrent == 0 {
		c.Transcription.MaxConcurrent = 2
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks driver names and that the HTTP surface can authenticate someone.
// Credentials are checked by each adapter constructor.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if !oneOf(c.Database.Driver, "mysql", "postgres", "memory") {
		errs = append(errs, fmt.Errorf("database.driver must be mysql, postgres or memory, got %q", c.Database.Driver))
	}
	if !oneOf(c.Storage.Driver, "minio", "s3", "memory") {
		errs = append(errs, fmt.Errorf("storage.driver must be minio, s3 or memory, got %q", c.Storage.Driver))
	}
	if !oneOf(c.AI.Provider, "openai", "gemini") {
		errs = append(errs, fmt.Errorf("ai.provider must be openai or gemini, got %q", c.AI.Provider))
	}
	if !oneOf(c.AI.Schema, "five-part.v2", "flat.v1") {
		errs = append(errs, fmt.Errorf("ai.schema must be five-part.v2 or flat.v1, got %q", c.AI.Schema))
	}
	if !oneOf(c.Transcription.Provider, "openai", "whisper") {
		errs = append(errs, fmt.Errorf("transcription.provider must be openai or whisper, got %q", c.Transcription.Provider))
	}
	if len(c.Auth.APIKeys) == 0 && c.Auth.TrustedHeader == "" {
		errs = append(errs, errors.New("auth: configure apiKeys or trustedHeader"))
	}
	if !oneOf(c.Logging.Format, "text", "json") {
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// MySQLDSN builds the go-sql-driver DSN.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
