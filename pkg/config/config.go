package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	CacheProviderRedis  = "redis"
	CacheProviderMemory = "memory"
	CacheProviderNone   = "none"

	DefaultCacheTTLSeconds = 3600
)

type Config struct {
	Server struct {
		Port                   int `yaml:"port"`
		ReadTimeoutSeconds     int `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds    int `yaml:"write_timeout_seconds"`
		ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
	} `yaml:"server"`
	Database struct {
		Driver             string `yaml:"driver"`
		URI                string `yaml:"uri"`
		DBName             string `yaml:"dbname"`
		TimeoutSeconds     int    `yaml:"timeout_seconds"`
		MaxPoolSize        uint64 `yaml:"max_pool_size"`
		CreateIndexesOnRun bool   `yaml:"create_indexes"`
	} `yaml:"database"`
	Redis struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		DB           int    `yaml:"db"`
		TLSEnabled   bool   `yaml:"tls_enabled"`
		TLSCertFile  string `yaml:"tls_cert_file"`
		TLSKeyFile   string `yaml:"tls_key_file"`
		PoolSize     int    `yaml:"pool_size"`
		MinIdleConns int    `yaml:"min_idle_conns"`
	} `yaml:"redis"`
	Cache struct {
		Provider          string `yaml:"provider"`
		TTLSeconds        int    `yaml:"ttl_seconds"`
		SingleFlight      bool   `yaml:"single_flight"`
		MemoryMaxEntries  int64  `yaml:"memory_max_entries"`
		OpTimeoutMillis   int    `yaml:"op_timeout_ms"`
		SweepOnInvalidate bool   `yaml:"sweep_on_invalidate"`
	} `yaml:"cache"`
	JWT struct {
		Secret   string `yaml:"secret"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"jwt"`
	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute"`
		Burst             int `yaml:"burst"`
	} `yaml:"rate_limit"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadConfig reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. A missing file is not an error: the
// service can be configured from the environment alone.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %v", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration with every default applied and
// no environment lookups. Used by tests and the importer.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT value: %v", err)
		}
		c.Server.Port = n
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		c.Database.URI = uri
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		c.Database.DBName = dbname
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		c.Redis.Host = host
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid REDIS_PORT value: %v", err)
		}
		c.Redis.Port = portNum
	}
	if username := os.Getenv("REDIS_USERNAME"); username != "" {
		c.Redis.Username = username
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		dbNum, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB value: %v", err)
		}
		c.Redis.DB = dbNum
	}
	if tlsEnabled := os.Getenv("REDIS_TLS_ENABLED"); tlsEnabled != "" {
		c.Redis.TLSEnabled = tlsEnabled == "true"
	}
	if tlsCertFile := os.Getenv("REDIS_TLS_CERT_FILE"); tlsCertFile != "" {
		c.Redis.TLSCertFile = tlsCertFile
	}
	if tlsKeyFile := os.Getenv("REDIS_TLS_KEY_FILE"); tlsKeyFile != "" {
		c.Redis.TLSKeyFile = tlsKeyFile
	}
	if provider := os.Getenv("CACHE_PROVIDER"); provider != "" {
		c.Cache.Provider = provider
	}
	if ttl := os.Getenv("CACHE_TTL_SECONDS"); ttl != "" {
		n, err := strconv.Atoi(ttl)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL_SECONDS value: %v", err)
		}
		c.Cache.TTLSeconds = n
	}
	if sf := os.Getenv("CACHE_SINGLE_FLIGHT"); sf != "" {
		c.Cache.SingleFlight = sf == "true"
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 5
	}

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.URI == "" {
		c.Database.URI = "mongodb://localhost:27017"
	}
	if c.Database.DBName == "" {
		c.Database.DBName = "homeinsight"
	}
	if c.Database.TimeoutSeconds == 0 {
		c.Database.TimeoutSeconds = 10
	}
	if c.Database.MaxPoolSize == 0 {
		c.Database.MaxPoolSize = 100
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}

	c.Cache.Provider = strings.ToLower(c.Cache.Provider)
	if c.Cache.Provider == "" {
		c.Cache.Provider = CacheProviderRedis
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}
	if c.Cache.MemoryMaxEntries == 0 {
		c.Cache.MemoryMaxEntries = 10000
	}
	if c.Cache.OpTimeoutMillis == 0 {
		c.Cache.OpTimeoutMillis = 500
	}

	if c.JWT.TTLHours == 0 {
		c.JWT.TTLHours = 24
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 100
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
}

// Validate rejects settings the rest of the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" || c.Database.DBName == "" {
			return fmt.Errorf("MONGO_URI and DB_NAME are required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Cache.Provider {
	case CacheProviderRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required")
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			return fmt.Errorf("REDIS_PORT must be between 1 and 65535")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("REDIS_DB must be non-negative")
		}
		if c.Redis.TLSEnabled && c.Redis.TLSCertFile != "" {
			if _, err := os.Stat(c.Redis.TLSCertFile); os.IsNotExist(err) {
				return fmt.Errorf("TLS certificate file does not exist: %s", c.Redis.TLSCertFile)
			}
		}
	case CacheProviderMemory, CacheProviderNone:
	default:
		return fmt.Errorf("unknown cache provider %q", c.Cache.Provider)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	return nil
}

// CacheTTL is the read-through cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CacheOpTimeout bounds every single cache provider call.
func (c *Config) CacheOpTimeout() time.Duration {
	return time.Duration(c.Cache.OpTimeoutMillis) * time.Millisecond
}

// DatabaseTimeout bounds connect and every single store call. Repositories
// are wrapped with it and the Mongo client applies it as its operation
// timeout.
func (c *Config) DatabaseTimeout() time.Duration {
	return time.Duration(c.Database.TimeoutSeconds) * time.Second
}

// JWTTTL is the lifetime of issued bearer tokens.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTLHours) * time.Hour
}

// RedisAddr returns host:port.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
