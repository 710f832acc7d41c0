package config

import (
	"os"
	"strings"
	"time"

	pstrings "vetgate/pkg/platform/strings"
)

// Config captures the environment-driven wiring for a deployment. Backends
// are selected by presence: an empty DatabaseURL keeps candidate storage
// in-memory, an empty RedisURL keeps the job queue in-process, an empty
// ExclusionsAPIKey leaves the live registry check pending.
type Config struct {
	Addr              string
	DatabaseURL       string
	RedisURL          string
	KafkaBrokers      []string
	ExclusionsAPIKey  string
	ExclusionsBaseURL string
	LogLevel          string
}

// ShutdownGrace bounds how long in-flight requests get on shutdown.
var ShutdownGrace = 10 * time.Second

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("VETGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = pstrings.DedupeAndTrim(strings.Split(raw, ","))
	}

	return Config{
		Addr:              addr,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		KafkaBrokers:      brokers,
		ExclusionsAPIKey:  os.Getenv("EXCLUSIONS_API_KEY"),
		ExclusionsBaseURL: os.Getenv("EXCLUSIONS_BASE_URL"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
	}
}
