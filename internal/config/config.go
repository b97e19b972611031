package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

const (
	// DefaultSourceDomain is the NontonAnimeID mirror scraped for catalog pages.
	DefaultSourceDomain = "https://s7.nontonanimeid.boats/"
	// DefaultResolverDomain hosts the token and download manifest endpoints.
	DefaultResolverDomain = "https://s2.kotakanimeid.link"
	// DefaultFingerprint is the constant x-fingerprint value the upstream player sends.
	DefaultFingerprint = "dummy-fingerprint"
)

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	SourceDomain          string `mapstructure:"source_domain"`
	ResolverDomain        string `mapstructure:"resolver_domain"`
	Origin                string `mapstructure:"origin"` // sent as the origin header to the resolver host
	Fingerprint           string `mapstructure:"fingerprint"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	TLSFingerprint        bool   `mapstructure:"tls_fingerprint"` // impersonate a Chrome ClientHello
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	GRPC struct {
		Port          int    `mapstructure:"port"`           // 0 disables the health endpoint
		ProbeInterval string `mapstructure:"probe_interval"` // how often the upstream health is probed
	} `mapstructure:"grpc"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Resolver struct {
		CallTimeout         string `mapstructure:"call_timeout"` // per upstream call, "0" disables
		RedirectConcurrency int    `mapstructure:"redirect_concurrency"`
	} `mapstructure:"resolver"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Type  string `mapstructure:"type"` // "", "memory" or "redis"; empty disables page caching
		Size  int    `mapstructure:"size"` // Maximum number of cached pages
		TTL   string `mapstructure:"ttl"`  // Go duration string like "5m"
		Redis struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Info().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	logger.Info().Msg("Configuration loaded successfully")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	v.SetDefault("source_domain", DefaultSourceDomain)
	v.SetDefault("resolver_domain", DefaultResolverDomain)
	v.SetDefault("fingerprint", DefaultFingerprint)
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("grpc.port", 0)
	v.SetDefault("grpc.probe_interval", "1m")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("resolver.call_timeout", "15s")
	v.SetDefault("resolver.redirect_concurrency", 1)
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", "5m")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	return &config, nil
}

// ApplyDefaults fills values that depend on other keys or must never be empty.
func (c *Config) ApplyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.SourceDomain == "" {
		c.SourceDomain = DefaultSourceDomain
	}
	if c.ResolverDomain == "" {
		c.ResolverDomain = DefaultResolverDomain
	}
	if c.Origin == "" {
		c.Origin = c.SourceDomain
	}
	if c.Fingerprint == "" {
		c.Fingerprint = DefaultFingerprint
	}
}

// Duration parses a Go duration string, logging and returning fallback when it is empty or invalid.
func Duration(key, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return parsed
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}
