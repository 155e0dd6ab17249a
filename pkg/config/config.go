package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "KITFORGE"

// Config holds kitforge configuration loaded from a YAML file, the environment, and defaults.
type Config struct {
	DataDir      string `mapstructure:"data_dir" validate:"required"`
	TemplatesDir string `mapstructure:"templates_dir" validate:"required"`
	DefaultDir   string `mapstructure:"default_dir"`
	TestMode     bool   `mapstructure:"test_mode"`
	LogLevel     string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat    string `mapstructure:"log_format" validate:"required,oneof=json console"`
	MetricsFile  string `mapstructure:"metrics_file"`

	Postgres PostgresConfig `mapstructure:"postgres"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Registry RegistryConfig `mapstructure:"registry"`
	Git      GitConfig      `mapstructure:"git"`
}

// PostgresConfig configures database provisioning for data-owning projects.
type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	// AdminURL switches provisioning from the psql tools to a direct connection.
	AdminURL string `mapstructure:"admin_url" validate:"omitempty,url"`
}

// GitHubConfig configures remote repository provisioning.
type GitHubConfig struct {
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	APIURL string `mapstructure:"api_url" validate:"required,url"`
}

// RegistryConfig configures dependency version lookups.
type RegistryConfig struct {
	URL string  `mapstructure:"url" validate:"required,url"`
	RPS float64 `mapstructure:"rps" validate:"gt=0"`
}

// GitConfig configures repository initialization.
type GitConfig struct {
	DefaultBranch string `mapstructure:"default_branch" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DBPath returns the metadata store path. Test mode uses an isolated database.
func (c *Config) DBPath() string {
	if c.TestMode {
		return filepath.Join(c.DataDir, "test", "projects.db")
	}
	return filepath.Join(c.DataDir, "projects.db")
}

// DefaultConfigDir returns the per-user configuration directory for kitforge.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "kitforge")
}

// Load reads configuration. path may be empty, in which case config.yaml in the
// default config directory is used if present. A .env file in the working
// directory is loaded first (non-fatal).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	configDir := DefaultConfigDir()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", configDir)
	v.SetDefault("templates_dir", filepath.Join(configDir, "templates"))
	v.SetDefault("default_dir", ".")
	v.SetDefault("test_mode", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_file", "")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.admin_url", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.org", "")
	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("registry.url", "https://registry.npmjs.org")
	v.SetDefault("registry.rps", 5)
	v.SetDefault("git.default_branch", "main")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// GITHUB_TOKEN is honored as a fallback, as most tooling does.
	if v.GetString("github.token") == "" {
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			v.Set("github.token", token)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &c, nil
}
