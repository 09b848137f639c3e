package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"strings"
	"testing"
	"time"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetenv(t, "PORT", "CSRF_KEY", "SESSION_KEY", "TIMEZONE", "PAYEE_VPA", "CURRENCY", "QR_SIZE", "UPLOAD_DIR", "STATIC_DIR")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "8585" {
		t.Fatalf("port = %q, want 8585", cfg.Port)
	}
	if len(cfg.CSRFKey) != 32 || len(cfg.SessionKey) != 32 {
		t.Fatalf("generated keys have lengths %d, %d", len(cfg.CSRFKey), len(cfg.SessionKey))
	}
	if bytes.Equal(cfg.CSRFKey, cfg.SessionKey) {
		t.Fatal("csrf and session keys must differ")
	}
	if cfg.Location.String() != "Asia/Kolkata" {
		t.Fatalf("location = %s", cfg.Location)
	}
	if cfg.PayeeVPA != "restaurant@upi" || cfg.Currency != "INR" || cfg.QRSize != 200 {
		t.Fatalf("payment defaults = %q %q %d", cfg.PayeeVPA, cfg.Currency, cfg.QRSize)
	}
	if cfg.UploadURL != "/static/uploads/" {
		t.Fatalf("upload url = %q", cfg.UploadURL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	t.Setenv("PORT", "9090")
	t.Setenv("CSRF_KEY", base64.StdEncoding.EncodeToString(key))
	t.Setenv("SESSION_KEY", base64.StdEncoding.EncodeToString(key))
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("QR_SIZE", "300")
	t.Setenv("TRUSTED_ORIGINS", "pos.local:8585,kitchen.local")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if !bytes.Equal(cfg.CSRFKey, key) {
		t.Fatal("csrf key not decoded from env")
	}
	if cfg.Location != time.UTC {
		t.Fatalf("location = %v", cfg.Location)
	}
	if cfg.QRSize != 300 {
		t.Fatalf("qr size = %d", cfg.QRSize)
	}
	if len(cfg.TrustedOrigins) != 2 || cfg.TrustedOrigins[1] != "kitchen.local" {
		t.Fatalf("trusted origins = %v", cfg.TrustedOrigins)
	}
}

func TestLoadConfigInvalidPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "8585" {
		t.Fatalf("port = %q, want fallback 8585", cfg.Port)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("TIMEZONE", "Mars/Olympus")
		if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "TIMEZONE") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("bad qr size", func(t *testing.T) {
		t.Setenv("TIMEZONE", "UTC")
		t.Setenv("QR_SIZE", "big")
		if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "parse env:") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("uploads outside static", func(t *testing.T) {
		t.Setenv("TIMEZONE", "UTC")
		t.Setenv("STATIC_DIR", "static")
		t.Setenv("UPLOAD_DIR", "/var/uploads")
		if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "UPLOAD_DIR") {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("short key is replaced", func(t *testing.T) {
		t.Setenv("TIMEZONE", "UTC")
		t.Setenv("CSRF_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CSRFKey) != 32 {
			t.Fatalf("csrf key length = %d", len(cfg.CSRFKey))
		}
	})
}

func TestUploadURLFor(t *testing.T) {
	tests := []struct {
		static, upload string
		want           string
		wantErr        bool
	}{
		{"static", "static/uploads", "/static/uploads/", false},
		{"static", "static/img/menu/", "/static/img/menu/", false},
		{"./static", "static/uploads", "/static/uploads/", false},
		{"/srv/static", "/srv/static/photos", "/static/photos/", false},
		{"static", "static", "", true},
		{"static", "uploads", "", true},
		{"static", "static/../uploads", "", true},
	}
	for _, tt := range tests {
		got, err := uploadURLFor(tt.static, tt.upload)
		if (err != nil) != tt.wantErr {
			t.Errorf("uploadURLFor(%q, %q) error = %v, wantErr %v", tt.static, tt.upload, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("uploadURLFor(%q, %q) = %q, want %q", tt.static, tt.upload, got, tt.want)
		}
	}
}
