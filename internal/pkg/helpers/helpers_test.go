package helpers

import (
	"bytes"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yigit/studentregistry/internal/pkg/logger"
)

func TestGetContentNullString(t *testing.T) {
	if got := GetContentNullString(""); got.Valid {
		t.Fatalf("empty string should map to NULL, got %+v", got)
	}
	if got := GetContentNullString("uploads/a.png"); !got.Valid || got.String != "uploads/a.png" {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestStringOrDefault(t *testing.T) {
	tests := []struct {
		in   sql.NullString
		want string
	}{
		{sql.NullString{}, "images/account.png"},
		{sql.NullString{Valid: true}, "images/account.png"},
		{sql.NullString{String: "uploads/x.jpg", Valid: true}, "uploads/x.jpg"},
	}
	for _, tt := range tests {
		if got := StringOrDefault(tt.in, "images/account.png"); got != tt.want {
			t.Fatalf("StringOrDefault(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("90s", time.Second); got != 90*time.Second {
		t.Fatalf("ParseDuration(90s) = %v", got)
	}
	if got := ParseDuration("later", time.Hour); got != time.Hour {
		t.Fatalf("ParseDuration(later) = %v, want default", got)
	}
}

func TestParseDurationLogsThroughAppLogger(t *testing.T) {
	t.Cleanup(func() {
		logger.Configure(logger.Config{Level: logger.InfoLevel, Pretty: true, Output: os.Stdout})
	})
	var buf bytes.Buffer
	logger.Configure(logger.Config{Level: logger.InfoLevel, Output: &buf})

	ParseDuration("soon", time.Minute)

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"value":"soon"`) {
		t.Fatalf("expected a warn entry for the malformed duration, got %q", out)
	}
}
