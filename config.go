package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/CrowderSoup/todo-collab/database"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	StaticDir    string        `mapstructure:"static_dir"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Config is the server configuration. Flags win over environment variables,
// which win over the config file, which wins over the defaults.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

var envBindings = map[string]string{
	"server.port":          "PORT",
	"server.static_dir":    "STATIC_DIR",
	"database.driver":      "DB_DRIVER",
	"database.path":        "DB_PATH",
	"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",
}

// LoadConfig reads .env when present, then the optional YAML file named by
// --config, the environment and the remaining command line flags.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	flags := pflag.NewFlagSet("todo-collab", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	flags.Int("port", 3001, "port to listen on")
	flags.String("db", "./todo.db", "path to the sqlite database")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	v := viper.New()
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("database.driver", database.DriverCGO)
	v.SetDefault("database.path", "./todo.db")
	v.SetDefault("cors.allowed_origins", []string{"*"})

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}
	if err := v.BindPFlag("server.port", flags.Lookup("port")); err != nil {
		return nil, fmt.Errorf("binding --port: %w", err)
	}
	if err := v.BindPFlag("database.path", flags.Lookup("db")); err != nil {
		return nil, fmt.Errorf("binding --db: %w", err)
	}

	if *configPath != "" {
		v.SetConfigFile(*configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", *configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case database.DriverCGO, database.DriverPure:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return errors.New("database path is empty")
	}
	return nil
}
