package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Service selects which routes a process mounts.
type Service string

const (
	ServiceContent      Service = "content"
	ServiceInteractions Service = "interactions"
	ServiceGateway      Service = "gateway"
	ServiceMonolith     Service = "monolith"
)

type Config struct {
	Port        string
	DatabaseURL string
	Service     Service

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	ContentServiceURL     string
	InteractionServiceURL string
	UpstreamTimeout       time.Duration

	LogLevel string
	GinMode  string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=culturemap port=5432 sslmode=disable TimeZone=Europe/Madrid"),
		Service:     Service(getenv("SERVICE", string(ServiceMonolith))),
		JWTSecret:   getenv("JWT_SECRET", "secret_key_change_me"),
		JWTIssuer:   getenv("JWT_ISSUER", "culturemap-identity"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		GinMode:     os.Getenv("GIN_MODE"),
	}

	var err error
	if cfg.JWTTTL, err = duration("JWT_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = duration("UPSTREAM_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	switch cfg.Service {
	case ServiceContent, ServiceInteractions, ServiceGateway, ServiceMonolith:
	default:
		return nil, fmt.Errorf("SERVICE: unknown service %q", cfg.Service)
	}

	// A monolith's gateway talks to its own routes.
	contentURL, interactionURL := "http://localhost:8081", "http://localhost:8082"
	if cfg.Service == ServiceMonolith {
		contentURL = "http://localhost:" + cfg.Port
		interactionURL = contentURL
	}
	cfg.ContentServiceURL = getenv("CONTENT_SERVICE_URL", contentURL)
	cfg.InteractionServiceURL = getenv("INTERACTION_SERVICE_URL", interactionURL)

	return cfg, nil
}

// ServesContent reports whether this process owns the content store.
func (c *Config) ServesContent() bool {
	return c.Service == ServiceContent || c.Service == ServiceMonolith
}

// ServesInteractions reports whether this process owns the interaction store.
func (c *Config) ServesInteractions() bool {
	return c.Service == ServiceInteractions || c.Service == ServiceMonolith
}

func (c *Config) ServesGateway() bool {
	return c.Service == ServiceGateway || c.Service == ServiceMonolith
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
