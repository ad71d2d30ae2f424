package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// unsetEnv clears keys for the duration of the test; t.Setenv restores the original values.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

var configEnvKeys = []string{
	"PORT", "SERVER_MODE", "SESSION_SECRET", "STATIC_DIR",
	"DB_DRIVER", "DB_PATH", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_CONN_MAX_LIFETIME", "DB_SEED_DEMO",
	"PHOTO_STORAGE", "UPLOAD_DIR", "ALLOWED_EXTENSIONS", "PHOTO_PLACEHOLDER", "MAX_UPLOAD_SIZE", "PHOTO_MAX_DIMENSION",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET", "CLOUDINARY_FOLDER",
	"LOG_LEVEL", "LOG_FORMAT", "RENDER", "VERCEL",
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	unsetEnv(t, configEnvKeys...)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != "5000" {
		t.Fatalf("port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != "school.db" {
		t.Fatalf("database = %s %s, want sqlite school.db", cfg.Database.Driver, cfg.Database.Path)
	}
	if cfg.Storage.Driver != StorageLocal {
		t.Fatalf("storage driver = %q, want local", cfg.Storage.Driver)
	}
	if cfg.Storage.Placeholder != "images/account.png" {
		t.Fatalf("placeholder = %q", cfg.Storage.Placeholder)
	}
	want := []string{"png", "jpg", "jpeg", "gif"}
	if !reflect.DeepEqual(cfg.Storage.AllowedExtensions, want) {
		t.Fatalf("allowed extensions = %v, want %v", cfg.Storage.AllowedExtensions, want)
	}
}

func TestLoadConfigFileThenEnvironment(t *testing.T) {
	unsetEnv(t, configEnvKeys...)
	path := writeConfig(t, `
server:
  port: "8081"
  mode: production
database:
  path: data/students.db
storage:
  allowed_extensions: [png]
logging:
  level: debug
`)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_EXTENSIONS", ".PNG, jpg ,")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q, want env override 9090", cfg.Server.Port)
	}
	if cfg.Server.Mode != "production" {
		t.Fatalf("mode = %q, want production from file", cfg.Server.Mode)
	}
	if cfg.Database.Path != "data/students.db" {
		t.Fatalf("path = %q, want file value", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"png", "jpg"}
	if !reflect.DeepEqual(cfg.Storage.AllowedExtensions, want) {
		t.Fatalf("allowed extensions = %v, want %v", cfg.Storage.AllowedExtensions, want)
	}
}

func TestLoadConfigHostedPlatformMovesDatabase(t *testing.T) {
	for _, key := range []string{"RENDER", "VERCEL"} {
		t.Run(key, func(t *testing.T) {
			unsetEnv(t, configEnvKeys...)
			t.Setenv(key, "1")

			cfg, err := LoadConfig("")
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Database.Path != "/tmp/school.db" {
				t.Fatalf("path = %q, want /tmp/school.db", cfg.Database.Path)
			}
		})
	}

	t.Run("explicit path wins", func(t *testing.T) {
		unsetEnv(t, configEnvKeys...)
		t.Setenv("RENDER", "1")
		t.Setenv("DB_PATH", "/data/school.db")

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Database.Path != "/data/school.db" {
			t.Fatalf("path = %q, want explicit /data/school.db", cfg.Database.Path)
		}
	})
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown database driver",
			env:     map[string]string{"DB_DRIVER": "mysql"},
			wantErr: "unsupported database driver",
		},
		{
			name:    "postgres without dsn",
			env:     map[string]string{"DB_DRIVER": "postgres"},
			wantErr: "dsn is required",
		},
		{
			name:    "cloudinary without credentials",
			env:     map[string]string{"PHOTO_STORAGE": "cloudinary", "CLOUDINARY_CLOUD_NAME": "demo"},
			wantErr: "cloudinary cloud name",
		},
		{
			name:    "bad lifetime",
			env:     map[string]string{"DB_CONN_MAX_LIFETIME": "soon"},
			wantErr: "max lifetime",
		},
		{
			name:    "non numeric upload size",
			env:     map[string]string{"MAX_UPLOAD_SIZE": "big"},
			wantErr: "environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, configEnvKeys...)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig("")
			if err == nil {
				t.Fatalf("LoadConfig() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("LoadConfig() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigCloudinaryDriver(t *testing.T) {
	unsetEnv(t, configEnvKeys...)
	t.Setenv("PHOTO_STORAGE", "Cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Storage.Driver != StorageCloudinary {
		t.Fatalf("storage driver = %q, want cloudinary", cfg.Storage.Driver)
	}
	if cfg.Cloudinary.Folder != "students" {
		t.Fatalf("folder = %q, want default students", cfg.Cloudinary.Folder)
	}
}
