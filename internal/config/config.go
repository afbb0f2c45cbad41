package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	minSecretLength  = 16
)

type Config struct {
	AppEnv string `env:"APP_ENV" env-default:"local"`

	HTTP     HTTPServer
	Database Database
	Auth     Auth
	Booking  Booking
}

type HTTPServer struct {
	Address            string        `env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout        time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout       time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

type Database struct {
	URL string `env:"DATABASE_URL" env-default:"labbooking.db"`
}

type Auth struct {
	JWTSecret    string        `env:"JWT_SECRET" env-default:"change-me-jwt-secret"`
	JWTAccessTTL time.Duration `env:"JWT_ACCESS_TTL" env-default:"60m"`
	BcryptCost   int           `env:"BCRYPT_COST" env-default:"10"`
}

type Booking struct {
	Timezone         string        `env:"LAB_TIMEZONE" env-default:"UTC"`
	AvailabilityTTL  time.Duration `env:"AVAILABILITY_CACHE_TTL" env-default:"30s"`
	DefaultPageLimit int           `env:"BOOKINGS_DEFAULT_LIMIT" env-default:"10"`
}

// Location is the working-hours time zone. Load has already rejected
// unknown zone names, so the UTC fallback only covers zero-value configs.
func (b Booking) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads an optional .env file, then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if _, err := time.LoadLocation(cfg.Booking.Timezone); err != nil {
		return nil, fmt.Errorf("invalid LAB_TIMEZONE %q: %w", cfg.Booking.Timezone, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics when the configuration is unusable.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func validateConfig(cfg *Config) error {
	if cfg.Auth.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.Booking.AvailabilityTTL < 0 {
		return fmt.Errorf("AVAILABILITY_CACHE_TTL must be >= 0")
	}
	if cfg.Booking.DefaultPageLimit <= 0 || cfg.Booking.DefaultPageLimit > 100 {
		return fmt.Errorf("BOOKINGS_DEFAULT_LIMIT must be in 1..100")
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if len(cfg.Auth.JWTSecret) < minSecretLength {
			return fmt.Errorf("in prod/release JWT_SECRET must be at least %d characters", minSecretLength)
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
