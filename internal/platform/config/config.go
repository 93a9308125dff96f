// Package config loads service configuration. A YAML file supplies the base
// values and environment variables override them, so deployments can keep
// thresholds in a reviewed file while secrets arrive from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	dErrors "attestra/pkg/domain-errors"

	"attestra/internal/domain"
)

// Defaults for non-secret configuration.
const (
	DefaultAddr         = ":8080"
	DefaultEvalInterval = time.Hour
	DefaultKafkaTopic   = "attestra.verdicts"
)

// Config holds all configuration for the monitor process.
type Config struct {
	// HTTP server
	Addr string `koanf:"addr"`

	// Evaluation
	EvalInterval  time.Duration `koanf:"eval_interval"`
	PolicyProfile string        `koanf:"policy_profile"` // "baseline" or "strict"
	// Policy, when present in the file, overrides the chosen profile's
	// thresholds field by field after profile selection.
	Policy *domain.PolicyConfig `koanf:"policy"`

	// Snapshot sources
	ReservesURL    string `koanf:"reserves_url"`
	LiabilitiesURL string `koanf:"liabilities_url"`

	// Infrastructure (all optional; absent means the feature is off)
	RedisAddr    string   `koanf:"redis_addr"`
	PostgresDSN  string   `koanf:"postgres_dsn"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`

	// Auditor access: HS256 signing key for export tokens, or a bcrypt hash
	// of a static API key as a fallback.
	AuditorJWTKey       string `koanf:"auditor_jwt_key"`
	AuditorAPIKeyBcrypt string `koanf:"auditor_api_key_bcrypt"`
}

// Load reads the optional YAML file at path, then applies env overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Addr:                envOr("ATTESTRA_ADDR", k.String("addr"), DefaultAddr),
		PolicyProfile:       envOr("ATTESTRA_POLICY_PROFILE", k.String("policy_profile"), "baseline"),
		ReservesURL:         envOr("ATTESTRA_RESERVES_URL", k.String("reserves_url"), ""),
		LiabilitiesURL:      envOr("ATTESTRA_LIABILITIES_URL", k.String("liabilities_url"), ""),
		RedisAddr:           envOr("ATTESTRA_REDIS_ADDR", k.String("redis_addr"), ""),
		PostgresDSN:         envOr("ATTESTRA_POSTGRES_DSN", k.String("postgres_dsn"), ""),
		KafkaTopic:          envOr("ATTESTRA_KAFKA_TOPIC", k.String("kafka_topic"), DefaultKafkaTopic),
		AuditorJWTKey:       envOr("ATTESTRA_AUDITOR_JWT_KEY", k.String("auditor_jwt_key"), ""),
		AuditorAPIKeyBcrypt: envOr("ATTESTRA_AUDITOR_API_KEY_BCRYPT", k.String("auditor_api_key_bcrypt"), ""),
	}

	cfg.EvalInterval = DefaultEvalInterval
	if k.Exists("eval_interval") {
		cfg.EvalInterval = k.Duration("eval_interval")
	}
	if raw := os.Getenv("ATTESTRA_EVAL_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("ATTESTRA_EVAL_INTERVAL: %w", err)
		}
		cfg.EvalInterval = d
	}

	if brokers := envOr("ATTESTRA_KAFKA_BROKERS", strings.Join(k.Strings("kafka_brokers"), ","), ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if k.Exists("policy") {
		var policy domain.PolicyConfig
		if err := k.Unmarshal("policy", &policy); err != nil {
			return nil, fmt.Errorf("parse policy overrides: %w", err)
		}
		cfg.Policy = &policy
	}

	return cfg, nil
}

// ResolvePolicy returns the effective policy: the named profile, replaced
// wholesale by the explicit policy block when one is configured. The two
// profiles deliberately disagree (6h vs 12h freshness, binary vs capped asset
// quality, flat vs tiered concentration); choosing is the deployer's job.
func (c *Config) ResolvePolicy() (domain.PolicyConfig, error) {
	if c.Policy != nil {
		return *c.Policy, nil
	}
	switch strings.ToLower(c.PolicyProfile) {
	case "", "baseline":
		return domain.BaselinePolicy(), nil
	case "strict":
		return domain.StrictPolicy(), nil
	default:
		return domain.PolicyConfig{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown policy profile %q", c.PolicyProfile)
	}
}

func envOr(env, fileValue, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}
