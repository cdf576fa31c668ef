package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"debate-tab/internal/allocation"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	App       AppConfig
	Allocator allocation.Options
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite file
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port        string
	FrontendURL string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret    string
	DivisionSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	divisionSize, err := getEnvInt("DIVISION_SIZE", 6)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "debate_tab"),
			Path:     getEnv("DB_PATH", "debate_tab.db"),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			FrontendURL: getEnv("FRONTEND_URL", ""),
		},
		App: AppConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			DivisionSize: divisionSize,
		},
		Allocator: allocation.DefaultOptions(),
	}

	if path := os.Getenv("ALLOCATOR_CONFIG"); path != "" {
		if err := loadAllocatorOptions(path, &config.Allocator); err != nil {
			return nil, err
		}
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}
	if config.App.DivisionSize < 1 {
		return nil, fmt.Errorf("DIVISION_SIZE must be positive")
	}
	if err := config.Allocator.Validate(); err != nil {
		return nil, fmt.Errorf("invalid allocator options: %w", err)
	}

	return config, nil
}

// GetDSN returns the connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.Path
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// loadAllocatorOptions overlays the YAML file at path onto opts. Keys
// missing from the file keep their current value.
func loadAllocatorOptions(path string, opts *allocation.Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read allocator config: %w", err)
	}
	if err := yaml.Unmarshal(content, opts); err != nil {
		return fmt.Errorf("failed to parse allocator config: %w", err)
	}
	return nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
