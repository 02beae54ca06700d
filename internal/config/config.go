package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Report   ReportConfig   `mapstructure:"report"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// AuthConfig holds the identity provider's user table and lockout policy.
type AuthConfig struct {
	MaxLoginAttempts int          `mapstructure:"max_login_attempts"`
	Users            []UserConfig `mapstructure:"users"`
}

// UserConfig is one login account and the department it acts for.
type UserConfig struct {
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Department string `mapstructure:"department"`
}

// LarkConfig holds the outbound notification settings. When disabled, step
// transitions are logged but not delivered anywhere.
type LarkConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	AppID           string            `mapstructure:"app_id"`
	AppSecret       string            `mapstructure:"app_secret"`
	DepartmentChats map[string]string `mapstructure:"department_chats"`
}

// ReportConfig holds report export settings.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/site_cost.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("auth.max_login_attempts", 5)

	viper.SetDefault("lark.enabled", false)

	viper.SetDefault("report.output_dir", "reports")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

func bindEnvVars() {
	// Credentials come from the environment, never the config file.
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Auth.Users) == 0 {
		return fmt.Errorf("auth.users must define at least one account")
	}
	for _, u := range c.Auth.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("auth.users entries require username and password")
		}
		if u.Department == "" {
			return fmt.Errorf("auth user %q has no department", u.Username)
		}
	}
	if c.Auth.MaxLoginAttempts <= 0 {
		return fmt.Errorf("auth.max_login_attempts must be positive")
	}
	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required when lark is enabled")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required when lark is enabled")
		}
	}
	return nil
}
