package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DBDriver    string // "sqlite" or "postgres"
	DatabaseDSN string // postgres DSN, only read when DBDriver == "postgres"
	SQLitePath  string
	JWTSecret   string
	CORSOrigins string
	Debug       bool

	AdminUsername string
	AdminPassword string

	ShopName        string // printed on receipts
	ReceiptFontPath string // TTF for receipts; needed for CJK names

	AppVersion        string
	UpdateManifestURL string
	UpdateExitOnApply bool // exit after a successful binary swap so the supervisor restarts us
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using OS environment and defaults")
	}

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		SQLitePath:  getEnv("SQLITE_PATH", defaultSQLitePath()),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		Debug:       getEnv("DEBUG", "") == "true",

		AdminUsername: getEnv("ADMIN_USERNAME", "owner"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		ShopName:        getEnv("SHOP_NAME", "Bedding Four-Piece Sets"),
		ReceiptFontPath: getEnv("RECEIPT_FONT_PATH", ""),

		AppVersion:        getEnv("APP_VERSION", "1.12.0"),
		UpdateManifestURL: getEnv("UPDATE_MANIFEST_URL", ""),
		UpdateExitOnApply: getEnv("UPDATE_EXIT_ON_APPLY", "") == "true",
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment variable is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.AdminPassword == "" {
		log.Fatal("[FATAL] ADMIN_PASSWORD environment variable is not set")
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == "" {
		log.Fatal("[FATAL] DATABASE_DSN is required when DB_DRIVER=postgres")
	}

	return cfg
}

// defaultSQLitePath keeps the ledger under the user's home directory,
// matching the per-user records file of the desktop versions.
func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ledger.db"
	}
	return filepath.Join(home, ".bedding-ledger", "ledger.db")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
