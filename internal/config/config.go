package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Kolkata must resolve on hosts without zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBPath       string
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool

	// Location is the restaurant's wall-clock zone; sales months and bill
	// times are evaluated in it.
	Location *time.Location

	PayeeVPA     string
	PayeeName    string
	Currency     string
	QRServiceURL string
	QRSize       int

	UploadDir      string
	UploadURL      string // public path of UploadDir, served under /static/
	TemplatesDir   string
	StaticDir      string
	TrustedOrigins []string
}

type envConfig struct {
	Port           string   `env:"PORT" envDefault:"8585"`
	DBPath         string   `env:"DB_PATH" envDefault:"./tiffin.db"`
	CSRFKey        string   `env:"CSRF_KEY"`
	SessionKey     string   `env:"SESSION_KEY"`
	CookieDomain   string   `env:"COOKIE_DOMAIN"`
	CookieSecure   bool     `env:"COOKIE_SECURE" envDefault:"false"`
	TimeZone       string   `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
	PayeeVPA       string   `env:"PAYEE_VPA" envDefault:"restaurant@upi"`
	PayeeName      string   `env:"PAYEE_NAME" envDefault:"Restaurant"`
	Currency       string   `env:"CURRENCY" envDefault:"INR"`
	QRServiceURL   string   `env:"QR_SERVICE_URL" envDefault:"https://api.qrserver.com/v1/create-qr-code/"`
	QRSize         int      `env:"QR_SIZE" envDefault:"200"`
	UploadDir      string   `env:"UPLOAD_DIR" envDefault:"static/uploads"`
	TemplatesDir   string   `env:"TEMPLATES_DIR" envDefault:"templates"`
	StaticDir      string   `env:"STATIC_DIR" envDefault:"static"`
	TrustedOrigins []string `env:"TRUSTED_ORIGINS" envSeparator:","`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var e envConfig
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", e.TimeZone, err)
	}

	cfg := &Config{
		Port:           e.Port,
		DBPath:         e.DBPath,
		CookieDomain:   e.CookieDomain,
		CookieSecure:   e.CookieSecure,
		Location:       loc,
		PayeeVPA:       e.PayeeVPA,
		PayeeName:      e.PayeeName,
		Currency:       e.Currency,
		QRServiceURL:   e.QRServiceURL,
		QRSize:         e.QRSize,
		UploadDir:      e.UploadDir,
		TemplatesDir:   e.TemplatesDir,
		StaticDir:      e.StaticDir,
		TrustedOrigins: e.TrustedOrigins,
	}

	cfg.UploadURL, err = uploadURLFor(e.StaticDir, e.UploadDir)
	if err != nil {
		return nil, err
	}

	// CSRF Key (critical for security)
	cfg.CSRFKey = decodeKey("CSRF_KEY", e.CSRFKey)
	// Session Key (critical for security)
	cfg.SessionKey = decodeKey("SESSION_KEY", e.SessionKey)

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", cfg.Port)
		cfg.Port = "8585"
	}

	return cfg, nil
}

// uploadURLFor maps uploadDir to its URL under the /static/ file server.
// Uploads outside staticDir would not be served, so they are rejected.
func uploadURLFor(staticDir, uploadDir string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(staticDir), filepath.Clean(uploadDir))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("UPLOAD_DIR %q must be a directory inside STATIC_DIR %q", uploadDir, staticDir)
	}
	return "/static/" + filepath.ToSlash(rel) + "/", nil
}

// decodeKey returns the base64 key in value, or a random development key
// when it is missing or shorter than 32 bytes.
func decodeKey(name, value string) []byte {
	if value == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

// generateRandomBytes generates a random key of n bytes.
func generateRandomBytes(n int) []byte {
	b := securecookie.GenerateRandomKey(n)
	if b == nil {
		// Only happens when the OS entropy source is broken.
		panic("could not generate a random key")
	}
	return b
}
