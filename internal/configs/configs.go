// Package configs contains the system configurations.
package configs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// EnvPrefix prefixes the environment variables overriding the config file, e.g. CLINIC_PORT.
const EnvPrefix = "CLINIC"

type configData struct {
	ServerPort      int32         `mapstructure:"port"`
	DatabaseDSN     string        `mapstructure:"database_dsn"`
	DatabaseDriver  string        `mapstructure:"database_driver"`
	PrivateKeyFile  string        `mapstructure:"private_key_file"`
	LogLevel        string        `mapstructure:"log_level"`
	Store           string        `mapstructure:"store"`
	StoreLatencyMin time.Duration `mapstructure:"store_latency_min"`
	StoreLatencyMax time.Duration `mapstructure:"store_latency_max"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	Timezone        string        `mapstructure:"timezone"`
}

// Config holds the system configuration.
type Config interface {
	ServerPort() int32
	DatabaseDSN() string
	DatabaseDriver() string
	PrivateKeyFile() string
	PrivateKey() rsa.PrivateKey
	LogLevel() string
	Store() string
	StoreLatency() (min, max time.Duration)
	RedisAddr() string
	CacheTTL() time.Duration
	Location() *time.Location
}

type defaultConfig struct {
	data       *configData
	privateKey *rsa.PrivateKey
	location   *time.Location
}

func (c *defaultConfig) ServerPort() int32 {
	return c.data.ServerPort
}

func (c *defaultConfig) DatabaseDSN() string {
	return c.data.DatabaseDSN
}

func (c *defaultConfig) DatabaseDriver() string {
	return c.data.DatabaseDriver
}

func (c *defaultConfig) PrivateKeyFile() string {
	return c.data.PrivateKeyFile
}

func (c *defaultConfig) PrivateKey() rsa.PrivateKey {
	return *c.privateKey
}

func (c *defaultConfig) LogLevel() string {
	return c.data.LogLevel
}

func (c *defaultConfig) Store() string {
	return c.data.Store
}

func (c *defaultConfig) StoreLatency() (time.Duration, time.Duration) {
	return c.data.StoreLatencyMin, c.data.StoreLatencyMax
}

func (c *defaultConfig) RedisAddr() string {
	return c.data.RedisAddr
}

func (c *defaultConfig) CacheTTL() time.Duration {
	return c.data.CacheTTL
}

// Location is the time zone appointment dates and times are expressed in.
func (c *defaultConfig) Location() *time.Location {
	return c.location
}

// loadPrivateKey loads the PKCS1 private key used to sign tokens. Relative paths are resolved
// against the directory of the config file when they don't exist as given.
func (c *defaultConfig) loadPrivateKey(configPath string) error {
	path := c.PrivateKeyFile()
	if _, err := os.Stat(path); os.IsNotExist(err) && !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(configPath), path)
	}
	pemFile, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read the private key: %w", err)
	}
	privatePem, _ := pem.Decode(pemFile)
	if privatePem == nil {
		return errors.New("the given private key is not PEM encoded")
	}
	pk, err := x509.ParsePKCS1PrivateKey(privatePem.Bytes)
	if err != nil {
		return fmt.Errorf("the given private key is not valid: %w", err)
	}
	c.privateKey = pk
	return nil
}

func (c *defaultConfig) validate() error {
	if c.data.ServerPort <= 0 || c.data.ServerPort > 65535 {
		return fmt.Errorf("invalid port %d", c.data.ServerPort)
	}
	switch c.data.Store {
	case StoreMemory:
	case StorePostgres:
		if c.data.DatabaseDSN == "" {
			return errors.New("database_dsn is required by the postgres store")
		}
	default:
		return fmt.Errorf("invalid store %q - e.g. postgres, memory", c.data.Store)
	}
	if c.data.StoreLatencyMax < c.data.StoreLatencyMin {
		return errors.New("store_latency_max must not be lower than store_latency_min")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_driver", "postgres")
	v.SetDefault("private_key_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("store", StorePostgres)
	v.SetDefault("store_latency_min", "0s")
	v.SetDefault("store_latency_max", "0s")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl", "1m")
	v.SetDefault("timezone", "Local")
}

// Load loads the given configuration file. Every key may be overridden by an environment
// variable named after it, e.g. CLINIC_DATABASE_DSN.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("an error occurred while loading config file: %w", err)
	}
	data := &configData{}
	if err := v.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("an error occurred while parsing config file: %w", err)
	}
	configuration := &defaultConfig{data: data}
	if err := configuration.validate(); err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", data.Timezone, err)
	}
	configuration.location = location
	if configuration.PrivateKeyFile() != "" {
		if err = configuration.loadPrivateKey(configPath); err != nil {
			return nil, err
		}
		return configuration, nil
	}
	// without a key file, tokens are signed with a key that only lives as long as the process
	configuration.privateKey, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("could not generate a private key: %w", err)
	}
	return configuration, nil
}

// MustLoad loads the given configuration file and if any error occurs, will panic.
func MustLoad(configPath string) Config {
	config, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return config
}
