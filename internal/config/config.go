// Package config loads the service configuration from defaults, an optional
// .env file, an optional config file, SOUNDBOARD_* environment variables
// and command-line flags.
package config

import (
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	KeyHTTPAddr          = "http.addr"
	KeyHTTPAllowedOrigin = "http.allowed_origin"
	KeyStorageDriver     = "storage.driver"
	KeyStorageDSN        = "storage.database_url"
	KeyStorageSeedFile   = "storage.seed_file"
	KeyAuthMode          = "auth.mode"
	KeyAuthJWTSecret     = "auth.jwt_secret"
	KeyAuthListeners     = "auth.allow_listeners"
	KeyAuthDevTokens     = "auth.dev_tokens"
	KeyCacheAddr         = "cache.valkey_addr"
	KeyCachePassword     = "cache.valkey_password"
	KeyCacheTTL          = "cache.ttl"
	KeyWSSendBuffer      = "ws.send_buffer"
	KeyLogLevel          = "log.level"
	KeyLogDevelopment    = "log.development"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	AuthModeJWT      = "jwt"
	AuthModeDatabase = "database"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Cache   CacheConfig   `mapstructure:"cache"`
	WS      WSConfig      `mapstructure:"ws"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr          string `mapstructure:"addr"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	DatabaseURL string `mapstructure:"database_url"`
	// SeedFile is a JSON array of sounds loaded into the memory store.
	SeedFile string `mapstructure:"seed_file"`
}

type AuthConfig struct {
	Mode           string `mapstructure:"mode"`
	JWTSecret      string `mapstructure:"jwt_secret"`
	AllowListeners bool   `mapstructure:"allow_listeners"`
	// DevTokens is a JSON file mapping static tokens to identities. When
	// set, those tokens are accepted alongside the configured mode.
	DevTokens string `mapstructure:"dev_tokens"`
}

type CacheConfig struct {
	ValkeyAddr     string        `mapstructure:"valkey_addr"`
	ValkeyPassword string        `mapstructure:"valkey_password"`
	TTL            time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether a valkey address is configured.
func (c CacheConfig) Enabled() bool { return c.ValkeyAddr != "" }

type WSConfig struct {
	SendBuffer int `mapstructure:"send_buffer"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// New returns a viper instance with every key defaulted and environment
// overrides enabled. SOUNDBOARD_AUTH_JWT_SECRET sets auth.jwt_secret.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyHTTPAllowedOrigin, "http://127.0.0.1:5173")
	v.SetDefault(KeyStorageDriver, DriverMemory)
	v.SetDefault(KeyStorageDSN, "")
	v.SetDefault(KeyStorageSeedFile, "")
	v.SetDefault(KeyAuthMode, AuthModeJWT)
	v.SetDefault(KeyAuthJWTSecret, "")
	v.SetDefault(KeyAuthListeners, false)
	v.SetDefault(KeyAuthDevTokens, "")
	v.SetDefault(KeyCacheAddr, "")
	v.SetDefault(KeyCachePassword, "")
	v.SetDefault(KeyCacheTTL, 30*time.Second)
	v.SetDefault(KeyWSSendBuffer, 256)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogDevelopment, false)

	v.SetEnvPrefix("SOUNDBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "loading %s", p)
		}
	}
	return nil
}

// Load reads configFile (if any) into v, decodes it and validates the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", configFile)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every missing or invalid key at once.
func (c *Config) Validate() error {
	var problems []string

	if c.HTTP.Addr == "" {
		problems = append(problems, KeyHTTPAddr+" is required")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			problems = append(problems, KeyStorageDSN+" is required for the postgres driver")
		}
	default:
		problems = append(problems, KeyStorageDriver+" must be memory or postgres, got "+quote(c.Storage.Driver))
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			problems = append(problems, KeyAuthJWTSecret+" is required for jwt auth")
		}
	case AuthModeDatabase:
		if c.Storage.Driver != DriverPostgres {
			problems = append(problems, KeyAuthMode+" database requires storage.driver postgres")
		}
	default:
		problems = append(problems, KeyAuthMode+" must be jwt or database, got "+quote(c.Auth.Mode))
	}

	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		problems = append(problems, KeyCacheTTL+" must be positive")
	}
	if c.WS.SendBuffer <= 0 {
		problems = append(problems, KeyWSSendBuffer+" must be positive")
	}

	if len(problems) > 0 {
		return errors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func quote(s string) string { return `"` + s + `"` }
