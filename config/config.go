// Package config loads the initiator's configuration: environment
// overrides for secrets and ports (godotenv, matching the teacher's
// config.Load), layered under a YAML file listing the FIX sessions to run
// (spec.md §6.2). Grounded on the teacher's config/config.go Load
// function, narrowed from a multi-tenant broker's sprawling config
// surface down to what a FIX initiator actually needs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/ShabbirHasan1/hotfix/session"
)

// Config is the initiator process's full configuration.
type Config struct {
	Environment string

	AdminAPI AdminAPIConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logging  LoggingConfig

	Sessions []SessionFileEntry `yaml:"sessions"`
}

// SessionFileEntry is one YAML session entry, translated into a
// session.Config by ToSessionConfig.
type SessionFileEntry struct {
	BeginString       string `yaml:"begin_string"`
	SenderCompID      string `yaml:"sender_comp_id"`
	TargetCompID      string `yaml:"target_comp_id"`
	Host              string `yaml:"host"`
	Port              uint16 `yaml:"port"`
	HeartbeatInterval int    `yaml:"heartbeat_interval_seconds"`
	ReconnectInterval int    `yaml:"reconnect_interval_seconds"`
	ResetOnLogon      bool   `yaml:"reset_on_logon"`
	TLSCACertPath     string `yaml:"tls_ca_cert_path"`
	DataDictionary    string `yaml:"data_dictionary_path"`
	Username          string `yaml:"username"`
	// Password is the encrypted-at-rest value (session.SecretBox.Encrypt
	// output); never plaintext in the YAML file.
	Password string `yaml:"password_encrypted"`
}

// ToSessionConfig builds a session.Config, applying defaults for zero
// durations.
func (e SessionFileEntry) ToSessionConfig() session.Config {
	hb := time.Duration(e.HeartbeatInterval) * time.Second
	if hb == 0 {
		hb = 30 * time.Second
	}
	cfg := session.Config{
		BeginString:        e.BeginString,
		SenderCompID:       e.SenderCompID,
		TargetCompID:       e.TargetCompID,
		ConnectionHost:     e.Host,
		ConnectionPort:     e.Port,
		HeartbeatInterval:  hb,
		ReconnectInterval:  time.Duration(e.ReconnectInterval) * time.Second,
		ResetOnLogon:       e.ResetOnLogon,
		TLSCACertPath:      e.TLSCACertPath,
		DataDictionaryPath: e.DataDictionary,
		Username:           e.Username,
		Password:           e.Password,
	}
	return cfg.WithDefaults()
}

type AdminAPIConfig struct {
	Addr      string
	JWTSecret string
}

type PostgresConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
}

// LoggingConfig controls where the process's structured log stream is
// written in addition to stdout. LogFile is optional: an empty value means
// stdout-only, matching the teacher's default.
type LoggingConfig struct {
	LogFile       string
	LogMaxSizeMB  int
	LogMaxAgeDays int
	LogMaxBackups int
	LogCompress   bool
}

// Load reads sessionsPath as YAML and overlays environment variables
// (loaded via godotenv.Load, ignoring a missing .env file) for secrets and
// connection addresses that shouldn't live in a checked-in YAML file.
func Load(sessionsPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(sessionsPath)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", sessionsPath, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", sessionsPath, err)
	}

	cfg.Environment = getEnv("ENVIRONMENT", "development")
	cfg.AdminAPI = AdminAPIConfig{
		Addr:      getEnv("ADMIN_API_ADDR", ":8090"),
		JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
	cfg.Postgres = PostgresConfig{
		DSN: getEnv("POSTGRES_DSN", ""),
	}
	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
	cfg.Logging = LoggingConfig{
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
		LogCompress:   getEnv("LOG_COMPRESS", "false") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces spec.md §6.2's required fields per session entry.
func (c *Config) Validate() error {
	if len(c.Sessions) == 0 {
		return fmt.Errorf("config: at least one session is required")
	}
	for i, s := range c.Sessions {
		if s.SenderCompID == "" || s.TargetCompID == "" {
			return fmt.Errorf("config: session %d missing SenderCompID/TargetCompID", i)
		}
		if s.Host == "" || s.Port == 0 {
			return fmt.Errorf("config: session %d missing host/port", i)
		}
	}
	if c.Environment == "production" && c.AdminAPI.JWTSecret == "" {
		return fmt.Errorf("config: ADMIN_JWT_SECRET is required in production")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
