package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Database and JWT settings are required;
// mail settings are optional because email delivery is best effort and
// the consumer degrades to logging codes when SMTP is not configured.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name

	DBMaxOpen      int           // connection pool: max open connections
	DBMaxIdle      int           // connection pool: max idle connections
	DBConnLifetime time.Duration // connection pool: max connection age

	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for confirmation code hashing
	SMTPHost     string // SMTP server host (optional)
	SMTPPort     string // SMTP server port (optional)
	SMTPUser     string // SMTP auth username (optional)
	SMTPPass     string // SMTP auth password (optional)
	MailFrom     string // From address on confirmation emails (optional)
}

// Load reads configuration values from the environment, after loading a
// .env file when one is present. Required variables are enforced by
// must() and missing values cause the program to exit with a fatal log
// message.
func Load() Config {
	_ = godotenv.Load() // .env is optional; real env vars win

	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),

		DBMaxOpen:      atoi(getenv("DB_MAX_OPEN_CONNS", "25")),
		DBMaxIdle:      atoi(getenv("DB_MAX_IDLE_CONNS", "25")),
		DBConnLifetime: parseDur(getenv("DB_CONN_MAX_LIFETIME", "30m")),

		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		MailFrom:     getenv("MAIL_FROM", "no-reply@localhost"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
