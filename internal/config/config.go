package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
)

// EnvPrefix prefixes every environment override, e.g. SPEAKERFLOW_DB_PASSWORD.
const EnvPrefix = "SPEAKERFLOW"

type Config struct {
	Diarization DiarizationConfig `yaml:"diarization"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Server      ServerConfig      `yaml:"server"`
}

// DiarizationConfig overrides engine thresholds. Nil fields keep the defaults.
type DiarizationConfig struct {
	SimilarityThreshold    *float64 `yaml:"similarity_threshold"`
	MinClusterSize         *int     `yaml:"min_cluster_size"`
	SmoothingWindow        *int     `yaml:"smoothing_window"`
	SmoothingMinConfidence *float64 `yaml:"smoothing_min_confidence"`
	LabelPool              []string `yaml:"label_pool"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
}

type GeminiConfig struct {
	Enabled bool     `yaml:"enabled"`
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RabbitMQConfig struct {
	URL        string        `yaml:"url"`
	Queue      string        `yaml:"queue"`
	Prefetch   int           `yaml:"prefetch"`
	JobTimeout time.Duration `yaml:"job_timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// envOverrides holds the settings that may come from the environment or .env.
type envOverrides struct {
	LogLevel      string   `envconfig:"LOG_LEVEL"`
	GeminiAPIKeys []string `envconfig:"GEMINI_API_KEYS"`
	DBHost        string   `envconfig:"DB_HOST"`
	DBUser        string   `envconfig:"DB_USER"`
	DBPassword    string   `envconfig:"DB_PASSWORD"`
	AMQPURL       string   `envconfig:"AMQP_URL"`
	ServerAddr    string   `envconfig:"SERVER_ADDR"`
}

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if len(env.GeminiAPIKeys) > 0 {
		c.Gemini.APIKeys = env.GeminiAPIKeys
	}
	if env.DBHost != "" {
		c.Database.Host = env.DBHost
	}
	if env.DBUser != "" {
		c.Database.User = env.DBUser
	}
	if env.DBPassword != "" {
		c.Database.Password = env.DBPassword
	}
	if env.AMQPURL != "" {
		c.RabbitMQ.URL = env.AMQPURL
	}
	if env.ServerAddr != "" {
		c.Server.Addr = env.ServerAddr
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if err := c.Diarization.validate(); err != nil {
		return err
	}
	if c.Gemini.Enabled && len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("gemini.api_keys is required when gemini is enabled")
	}
	if c.Database.Enabled && (c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "") {
		return fmt.Errorf("database.host, database.user and database.name are required when database is enabled")
	}

	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 5
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3 * time.Minute
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "speaker-flow"
	}
	if c.RabbitMQ.Prefetch == 0 {
		c.RabbitMQ.Prefetch = c.Performance.MaxConcurrent
	}
	if c.RabbitMQ.JobTimeout == 0 {
		c.RabbitMQ.JobTimeout = 10 * time.Minute
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	return nil
}

var errEmptyLabel = errors.New("diarization.label_pool must not contain empty labels")

// validate rejects zero because the engine treats zero as "use the default".
func (d DiarizationConfig) validate() error {
	if v := d.SimilarityThreshold; v != nil && (*v <= 0 || *v > 1) {
		return fmt.Errorf("diarization.similarity_threshold must be within (0, 1], got %v", *v)
	}
	if v := d.MinClusterSize; v != nil && *v < 1 {
		return fmt.Errorf("diarization.min_cluster_size must be at least 1, got %d", *v)
	}
	if v := d.SmoothingWindow; v != nil && *v < 1 {
		return fmt.Errorf("diarization.smoothing_window must be at least 1, got %d", *v)
	}
	if v := d.SmoothingMinConfidence; v != nil && (*v <= 0 || *v > 1) {
		return fmt.Errorf("diarization.smoothing_min_confidence must be within (0, 1], got %v", *v)
	}
	for _, l := range d.LabelPool {
		if l == "" {
			return errEmptyLabel
		}
	}
	return nil
}

// Params converts the section into engine parameters; unset values keep the defaults.
func (d DiarizationConfig) Params() diarization.Params {
	p := diarization.DefaultParams()
	if d.SimilarityThreshold != nil {
		p.SimilarityThreshold = *d.SimilarityThreshold
	}
	if d.MinClusterSize != nil {
		p.MinClusterSize = *d.MinClusterSize
	}
	if d.SmoothingWindow != nil {
		p.SmoothingWindow = *d.SmoothingWindow
	}
	if d.SmoothingMinConfidence != nil {
		p.SmoothingMinConfidence = *d.SmoothingMinConfidence
	}
	if len(d.LabelPool) > 0 {
		p.LabelPool = d.LabelPool
	}
	return p
}

// DSN returns the go-sql-driver/mysql data source name.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}
