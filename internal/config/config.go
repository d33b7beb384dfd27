package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable, e.g. VMDROP_DB_HOST
const Prefix = "VMDROP"

// ErrHelpWanted is returned by Load after the usage or version text has been produced
var ErrHelpWanted = conf.ErrHelpWanted

// Config holds all application configuration
type Config struct {
	conf.Version
	Web     WebConfig
	DB      DatabaseConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Worker  WorkerConfig
	Tracing TracingConfig
	Import  ImportConfig
	Debug   bool `conf:"default:false"`
}

// WebConfig holds API server configuration
type WebConfig struct {
	Host            string        `conf:"default:0.0.0.0:8080"`
	ReadTimeout     time.Duration `conf:"default:15s"`
	WriteTimeout    time.Duration `conf:"default:30s"`
	IdleTimeout     time.Duration `conf:"default:60s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	CORSOrigin      string        `conf:"default:*"`
}

// DatabaseConfig holds database connection configuration.
// An empty Host selects the in-memory demo data source.
type DatabaseConfig struct {
	User         string `conf:"default:voicemail"`
	Password     string `conf:"default:voicemail,mask"`
	Host         string
	Name         string `conf:"default:voicemail_drop"`
	MaxIdleConns int    `conf:"default:5"`
	MaxOpenConns int    `conf:"default:25"`
	DisableTLS   bool   `conf:"default:true"`
	Migrate      bool   `conf:"default:true"`
}

// RedisConfig holds queue configuration. An empty URL selects the in-process queue.
type RedisConfig struct {
	URL       string
	QueueName string `conf:"default:voicemail_drops"`
}

// AuthConfig holds token verification settings.
// With no secret every request acts as DemoOrganization.
type AuthConfig struct {
	Secret           string        `conf:"mask"`
	CookieName       string        `conf:"default:auth-token"`
	DemoOrganization string        `conf:"default:org-1"`
	TokenTTL         time.Duration `conf:"default:24h"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	Concurrency   int     `conf:"default:5"`
	MaxRetryCount int     `conf:"default:3"`
	SuccessRate   float64 `conf:"default:0.92"`
}

// TracingConfig holds Jaeger exporter settings. An empty ReporterURI disables tracing.
type TracingConfig struct {
	ReporterURI string
	ServiceName string  `conf:"default:voicemail-drop-api"`
	Probability float64 `conf:"default:1"`
}

// ImportConfig bounds customer imports
type ImportConfig struct {
	MaxBatchSize int   `conf:"default:1000"`
	MaxFileSize  int64 `conf:"default:10485760"`
}

// Load reads .env (if present) and then the environment.
// When --help or --version is requested the text is returned with ErrHelpWanted.
func Load(build string) (*Config, string, error) {
	_ = godotenv.Load()

	cfg := Config{
		Version: conf.Version{
			Build: build,
			Desc:  "voicemail drop backend",
		},
	}

	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, help, ErrHelpWanted
		}
		return nil, "", fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Worker.Concurrency < 1 {
		return nil, "", fmt.Errorf("invalid worker concurrency %d", cfg.Worker.Concurrency)
	}
	if cfg.Import.MaxBatchSize < 1 {
		return nil, "", fmt.Errorf("invalid import batch size %d", cfg.Import.MaxBatchSize)
	}

	return &cfg, "", nil
}

// DemoData reports whether the in-memory data source should be used
func (c *Config) DemoData() bool {
	return c.DB.Host == ""
}

// InProcessQueue reports whether jobs stay inside the API process.
// Demo data lives in the API's memory, so it always delivers in process.
func (c *Config) InProcessQueue() bool {
	return c.Redis.URL == "" || c.DemoData()
}

// TracingEnabled reports whether a Jaeger collector is configured
func (c *Config) TracingEnabled() bool {
	return c.Tracing.ReporterURI != ""
}

// String renders the configuration with secrets masked
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return err.Error()
	}
	return out
}
