package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvdk01/loadsim/internal/validator"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	envPrefix = "LOADSIM_"
	EnvConfig = envPrefix + "CONFIG"
)

// Load resolves a Config. path names an optional YAML file; when empty,
// LOADSIM_CONFIG is consulted. overrides carry command line values keyed
// like the file. Only a file that cannot be read or parsed is an error.
func Load(path string, overrides map[string]string) (Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Default(), fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// LOADSIM_UNIQUE_PAYLOAD -> unique_payload
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Default(), fmt.Errorf("load environment: %w", err)
	}

	for key, value := range overrides {
		k.Set(key, value) //nolint:errcheck
	}

	return resolve(k), nil
}

func resolve(k *koanf.Koanf) Config {
	def := Default()
	cfg := def

	cfg.TotalRequests = intValue(k, KeyRequests, def.TotalRequests)
	cfg.BatchConcurrency = intValue(k, KeyConcurrent, def.BatchConcurrency)
	cfg.DelayMillis = intValue(k, KeyDelay, def.DelayMillis)
	cfg.Verbose = boolValue(k, KeyVerbose, def.Verbose)
	cfg.Target = stringValue(k, KeyTarget, def.Target)
	cfg.RequestTimeout = durationValue(k, KeyTimeout, def.RequestTimeout)
	cfg.Seed = uintValue(k, KeySeed, def.Seed)
	cfg.UniquePayload = boolValue(k, KeyUniquePayload, def.UniquePayload)
	cfg.MetricsAddr = stringValue(k, KeyMetricsAddr, def.MetricsAddr)
	cfg.LogLevel = strings.ToLower(stringValue(k, KeyLogLevel, def.LogLevel))

	return sanitize(cfg, def)
}

// sanitize resets every field that fails validation to its default.
func sanitize(cfg, def Config) Config {
	v := validator.New()
	if err := v.ValidateURL(cfg.Target); err != nil {
		log.WithField("target", cfg.Target).WithError(err).Debug("invalid target, using default")
		cfg.Target = def.Target
	}

	err := v.Struct(cfg)
	for _, field := range validator.InvalidFields(err) {
		log.WithField("field", field).Debug("config value out of bounds, using default")
		switch field {
		case "TotalRequests":
			cfg.TotalRequests = def.TotalRequests
		case "BatchConcurrency":
			cfg.BatchConcurrency = def.BatchConcurrency
		case "DelayMillis":
			cfg.DelayMillis = def.DelayMillis
		case "RequestTimeout":
			cfg.RequestTimeout = def.RequestTimeout
		case "LogLevel":
			cfg.LogLevel = def.LogLevel
		}
	}
	return cfg
}

func raw(k *koanf.Koanf, key string) (string, bool) {
	if !k.Exists(key) {
		return "", false
	}
	return strings.TrimSpace(k.String(key)), true
}

func fallback(key, value string, err error) {
	log.WithFields(log.Fields{"key": key, "value": value}).WithError(err).Debug("invalid config value, using default")
}

func intValue(k *koanf.Koanf, key string, def int) int {
	s, ok := raw(k, key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		fallback(key, s, err)
		return def
	}
	return v
}

func uintValue(k *koanf.Koanf, key string, def uint64) uint64 {
	s, ok := raw(k, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		fallback(key, s, err)
		return def
	}
	return v
}

func boolValue(k *koanf.Koanf, key string, def bool) bool {
	s, ok := raw(k, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		fallback(key, s, err)
		return def
	}
	return v
}

func durationValue(k *koanf.Koanf, key string, def time.Duration) time.Duration {
	s, ok := raw(k, key)
	if !ok {
		return def
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		fallback(key, s, err)
		return def
	}
	return v
}

func stringValue(k *koanf.Koanf, key string, def string) string {
	s, ok := raw(k, key)
	if !ok || s == "" {
		return def
	}
	return s
}
