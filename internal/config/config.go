package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported store drivers
const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Store   StoreConfig   `mapstructure:"store"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type AppConfig struct {
	Env string `mapstructure:"env"` // e.g., "local", "prod"
}

type StoreConfig struct {
	Driver    string `mapstructure:"driver"` // "json" or "postgres"
	Dir       string `mapstructure:"dir"`
	StockFile string `mapstructure:"stock_file"`
	UserFile  string `mapstructure:"user_file"`
	DSN       string `mapstructure:"dsn"`
}

type GRPCConfig struct {
	Addr  string `mapstructure:"addr"`
	Token string `mapstructure:"token"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var keys = []string{
	"app.env",
	"store.driver", "store.dir", "store.stock_file", "store.user_file", "store.dsn",
	"grpc.addr", "grpc.token",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.prefix",
	"log.level", "log.format",
	"tracing.enabled",
}

// Load reads configuration from a .env file, an optional tusec.yaml, TUSEC_* environment variables, and defaults.
// configPaths are searched for tusec.yaml; the working directory is used when none is given.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults
	v.SetDefault("app.env", "local")

	v.SetDefault("store.driver", DriverJSON)
	v.SetDefault("store.dir", ".")
	v.SetDefault("store.stock_file", "tusec_stocks.json")
	v.SetDefault("store.user_file", "users.json")
	v.SetDefault("store.dsn", "host=localhost port=5432 user=postgres password=postgres dbname=tusec sslmode=disable")

	v.SetDefault("grpc.addr", "localhost:50051")
	v.SetDefault("grpc.token", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "tusec:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)

	// 3. Optional config file
	v.SetConfigName("tusec")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// 4. Environment Variables, e.g. "store.driver" -> "TUSEC_STORE_DRIVER"
	v.SetEnvPrefix("TUSEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverJSON:
		if c.Store.Dir == "" {
			return errors.New("store.dir cannot be empty")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn cannot be empty")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.GRPC.Addr == "" {
		return errors.New("grpc.addr cannot be empty")
	}
	if c.GRPC.Token == "" {
		return errors.New("grpc.token cannot be empty")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr cannot be empty when redis is enabled")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
