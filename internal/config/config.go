package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	DBDSN  string
	LogFile string

	// AuthSecret signs session tokens. The process must not serve auth
	// routes without it; main fatals when it is empty.
	AuthSecret string

	// Captcha gate for registration. When CaptchaRequired is set and the
	// secret is missing, register responds 500 (operator error).
	CaptchaSecret   string
	CaptchaRequired bool

	// Blob storage (S3-compatible).
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UsePathStyle  bool
	BlobPublicBase  string

	// Optional bootstrap admin, seeded idempotently at startup.
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DBDSN:           getEnv("DB_DSN", "autobridge.db"),
		LogFile:         os.Getenv("LOG_FILE"),
		AuthSecret:      os.Getenv("AUTH_SECRET"),
		CaptchaSecret:   os.Getenv("CAPTCHA_SECRET"),
		CaptchaRequired: os.Getenv("CAPTCHA_REQUIRED") == "true",
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        getEnv("AWS_REGION", "auto"),
		S3Bucket:        os.Getenv("S3_BUCKET_NAME"),
		S3AccessKey:     os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3UsePathStyle:  os.Getenv("S3_USE_PATH_STYLE") == "true",
		BlobPublicBase:  os.Getenv("BLOB_PUBLIC_BASE"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s CAPTCHA_REQUIRED=%v S3_BUCKET=%s", cfg.Port, cfg.DBDSN, cfg.CaptchaRequired, cfg.S3Bucket)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
