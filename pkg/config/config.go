// Package config holds the runtime settings for the PhishGuard
// gateway. All settings can be configured via environment variables or
// programmatically.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// AuditBackend selects where the scan audit trail is written.
type AuditBackend string

const (
	AuditFile     AuditBackend = "file"     // JSON-lines file (default)
	AuditPostgres AuditBackend = "postgres" // Postgres table, for fleets
	AuditNone     AuditBackend = "none"     // discard (tests only)
)

// Config holds global settings for the PhishGuard gateway.
type Config struct {
	// === Core Settings ===
	ListenAddr   string // HTTP listen address (default: ":8080")
	ModelPath    string // Path to a classifier artifact; empty = embedded default
	TrustConfig  string // Path to a YAML trust-list override; empty = compiled defaults
	RequireModel bool   // Refuse to start without a loadable model instead of degrading

	// === Detection Thresholds (0.0 - 1.0) ===
	// Invariant: PhishingThreshold > SuspiciousThreshold.
	PhishingThreshold   float64 // Probability at or above this = Phishing/High (default: 0.75)
	SuspiciousThreshold float64 // Probability at or above this = Suspicious/Medium (default: 0.40)

	// === Ensemble Weights ===
	// Module name -> weight, e.g. "classifier=1.0,lexical=0.2".
	// Only the classifier drives the verdict by default; heuristic
	// modules stay analytics-only until an operator re-weights them.
	EnsembleWeights map[string]float64

	// === Best-effort Lookups ===
	EnableDNSProbe  bool          // DNS resolution probe inside the reputation module
	DNSProbeTimeout time.Duration // Per-probe time limit (default: 1500ms)
	EnableAgeLookup bool          // RDAP registration-age lookup (off the verdict path)

	// === Audit ===
	AuditBackend AuditBackend
	AuditLogPath string // File backend path (default: "scan_audit.jsonl")
	PostgresDSN  string // Postgres backend DSN

	// === Verdict Cache ===
	EnableCache bool
	RedisAddr   string
	RedisDB     int
	CacheTTL    time.Duration
}

// NewDefaultConfig creates a Config with sensible defaults. All
// settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		ListenAddr:   GetEnv("PHISHGUARD_LISTEN", ":8080"),
		ModelPath:    GetEnv("PHISHGUARD_MODEL_PATH", ""),
		TrustConfig:  GetEnv("PHISHGUARD_TRUST_CONFIG", ""),
		RequireModel: GetEnvBool("PHISHGUARD_REQUIRE_MODEL", false),

		PhishingThreshold:   GetEnvFloat("PHISHGUARD_PHISHING_THRESHOLD", 0.75),
		SuspiciousThreshold: GetEnvFloat("PHISHGUARD_SUSPICIOUS_THRESHOLD", 0.40),

		EnsembleWeights: parseWeights(GetEnv("PHISHGUARD_WEIGHTS", "")),

		EnableDNSProbe:  GetEnvBool("PHISHGUARD_DNS_PROBE", true),
		DNSProbeTimeout: time.Duration(GetEnvInt("PHISHGUARD_DNS_TIMEOUT_MS", 1500)) * time.Millisecond,
		EnableAgeLookup: GetEnvBool("PHISHGUARD_AGE_LOOKUP", false),

		AuditBackend: AuditBackend(GetEnv("PHISHGUARD_AUDIT_BACKEND", string(AuditFile))),
		AuditLogPath: GetEnv("PHISHGUARD_AUDIT_LOG", "scan_audit.jsonl"),
		PostgresDSN:  GetEnv("PHISHGUARD_POSTGRES_DSN", ""),

		EnableCache: GetEnvBool("PHISHGUARD_CACHE", false),
		RedisAddr:   GetEnv("PHISHGUARD_REDIS_ADDR", "localhost:6379"),
		RedisDB:     GetEnvInt("PHISHGUARD_REDIS_DB", 0),
		CacheTTL:    time.Duration(GetEnvInt("PHISHGUARD_CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
}

// parseWeights parses "classifier=1.0,lexical=0.2" into a weight map.
// Malformed entries are skipped with a warning rather than failing
// startup; a missing map means the engine default applies.
func parseWeights(s string) map[string]float64 {
	if s == "" {
		return nil
	}
	weights := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			log.Printf("[STARTUP] Warning: skipping malformed weight entry %q", part)
			continue
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil || w < 0 {
			log.Printf("[STARTUP] Warning: skipping invalid weight for %q", kv[0])
			continue
		}
		weights[strings.TrimSpace(kv[0])] = w
	}
	if len(weights) == 0 {
		return nil
	}
	return weights
}

// Validate checks threshold ordering and backend selection. Called at
// startup before the server begins accepting traffic.
func (c *Config) Validate() error {
	if c.PhishingThreshold <= c.SuspiciousThreshold {
		return fmt.Errorf("PHISHGUARD_PHISHING_THRESHOLD (%.2f) must exceed PHISHGUARD_SUSPICIOUS_THRESHOLD (%.2f)",
			c.PhishingThreshold, c.SuspiciousThreshold)
	}
	if c.SuspiciousThreshold <= 0 || c.PhishingThreshold >= 1 {
		return fmt.Errorf("thresholds must lie strictly inside (0,1)")
	}

	switch c.AuditBackend {
	case AuditFile, AuditNone:
	case AuditPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("PHISHGUARD_AUDIT_BACKEND=postgres requires PHISHGUARD_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown audit backend %q", c.AuditBackend)
	}

	if c.RequireModel && c.ModelPath == "" {
		log.Printf("[STARTUP] Warning: PHISHGUARD_REQUIRE_MODEL set without PHISHGUARD_MODEL_PATH; the embedded model will be used")
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
