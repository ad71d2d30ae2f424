package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string `yaml:"port" env:"PORT"`
		Mode          string `yaml:"mode" env:"SERVER_MODE"`
		SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET"`
		StaticDir     string `yaml:"static_dir" env:"STATIC_DIR"`
		LiveUpdates   bool   `yaml:"live_updates" env:"LIVE_UPDATES"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Path            string `yaml:"path" env:"DB_PATH"`
		DSN             string `yaml:"dsn" env:"DATABASE_URL"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		SeedDemo        bool   `yaml:"seed_demo" env:"DB_SEED_DEMO"`
	} `yaml:"database"`

	Storage struct {
		Driver            string   `yaml:"driver" env:"PHOTO_STORAGE"`
		UploadDir         string   `yaml:"upload_dir" env:"UPLOAD_DIR"`
		AllowedExtensions []string `yaml:"allowed_extensions" env:"ALLOWED_EXTENSIONS" envSeparator:","`
		Placeholder       string   `yaml:"placeholder" env:"PHOTO_PLACEHOLDER"`
		MaxUploadSize     int64    `yaml:"max_upload_size" env:"MAX_UPLOAD_SIZE"`
		MaxDimension      int      `yaml:"max_dimension" env:"PHOTO_MAX_DIMENSION"`
		MaxPixels         int      `yaml:"max_pixels" env:"PHOTO_MAX_PIXELS"`
	} `yaml:"storage"`

	Cloudinary struct {
		CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
		APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
		APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
		Folder    string `yaml:"folder" env:"CLOUDINARY_FOLDER"`
	} `yaml:"cloudinary"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// Supported database and photo storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
)

// hostedDBPath is where the SQLite file lives on platforms with a read-only app directory.
const hostedDBPath = "/tmp/school.db"

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	applyPlatformOverrides(config)
	normalize(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.StaticDir = "static"
	config.Server.LiveUpdates = true

	config.Database.Driver = DriverSQLite
	config.Database.Path = "school.db"
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.Storage.Driver = StorageLocal
	config.Storage.UploadDir = "static/uploads"
	config.Storage.AllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}
	config.Storage.Placeholder = "images/account.png"
	config.Storage.MaxUploadSize = 5 << 20
	config.Storage.MaxDimension = 600
	config.Storage.MaxPixels = 40_000_000

	config.Cloudinary.Folder = "students"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// applyPlatformOverrides moves the SQLite file to a writable location on Render and Vercel
// unless DB_PATH was set explicitly.
func applyPlatformOverrides(config *Config) {
	if _, explicit := os.LookupEnv("DB_PATH"); explicit {
		return
	}
	if GetEnv("RENDER", "") != "" || GetEnv("VERCEL", "") != "" {
		config.Database.Path = hostedDBPath
	}
}

func normalize(config *Config) {
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	config.Storage.Driver = strings.ToLower(strings.TrimSpace(config.Storage.Driver))

	exts := make([]string, 0, len(config.Storage.AllowedExtensions))
	for _, ext := range config.Storage.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	config.Storage.AllowedExtensions = exts
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch config.Database.Driver {
	case DriverSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case DriverPostgres:
		if config.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	switch config.Storage.Driver {
	case StorageLocal:
		if config.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required for local photo storage")
		}
	case StorageCloudinary:
		c := config.Cloudinary
		if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
			return fmt.Errorf("cloudinary cloud name, api key and api secret are required")
		}
	default:
		return fmt.Errorf("unsupported photo storage driver %q", config.Storage.Driver)
	}

	if len(config.Storage.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed photo extension is required")
	}
	if config.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if config.Storage.Placeholder == "" {
		return fmt.Errorf("photo placeholder is required")
	}

	return nil
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
