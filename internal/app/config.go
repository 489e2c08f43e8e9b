package app

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Draft backends.
const (
	DraftsFS       = "fs"
	DraftsSQLite   = "sqlite"
	DraftsPostgres = "postgres"
	DraftsMemory   = "memory"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Drafts  DraftsConfig      `yaml:"drafts"`
	API     APIConfig         `yaml:"api"`
	Export  ExportConfig      `yaml:"export"`
	Session SessionConfig     `yaml:"session"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Drafts.Validate(); err != nil {
		return fmt.Errorf("drafts: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// PublicBaseURL prefixes share links for public resumes.
	PublicBaseURL string `yaml:"public_base_url"`
}

func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DraftsConfig selects where editing sessions keep their drafts.
type DraftsConfig struct {
	Backend     string        `yaml:"backend"`
	Dir         string        `yaml:"dir"`
	SQLitePath  string        `yaml:"sqlite_path"`
	PostgresDSN string        `yaml:"postgres_dsn"`
	Timeout     time.Duration `yaml:"timeout"`
}

func (c *DraftsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(DraftsFS, DraftsSQLite, DraftsPostgres, DraftsMemory)),
		validation.Field(&c.Dir, validation.When(c.Backend == DraftsFS, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.Backend == DraftsSQLite, validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// APIConfig points at the remote resume service.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(5)),
	)
}

// ExportConfig configures the headless browser and PDF output.
type ExportConfig struct {
	ChromePath string        `yaml:"chrome_path"`
	Timeout    time.Duration `yaml:"timeout"`
	Scale      float64       `yaml:"scale"`
	ArchiveDir string        `yaml:"archive_dir"`
	Optimize   bool          `yaml:"optimize"`
}

func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.Scale, validation.Required, validation.Min(1.0), validation.Max(4.0)),
	)
}

// SessionConfig controls the builder session cookie.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CookieName, validation.Required),
		validation.Field(&c.TTL, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			PublicBaseURL: "http://localhost:5173",
		},
		Drafts: DraftsConfig{
			Backend: DraftsFS,
			Dir:     "./drafts",
			Timeout: 5 * time.Second,
		},
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 30 * time.Second,
			Retries: 2,
		},
		Export: ExportConfig{
			Timeout: 60 * time.Second,
			Scale:   2,
		},
		Session: SessionConfig{
			CookieName: "resume_session",
			TTL:        30 * time.Minute,
		},
	}
}
