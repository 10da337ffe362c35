package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server struct {
		Port string `koanf:"port"`
	} `koanf:"server"`

	DB struct {
		Host     string `koanf:"host"`
		Port     string `koanf:"port"`
		User     string `koanf:"user"`
		Password string `koanf:"password"`
		Name     string `koanf:"name"`
		SSLMode  string `koanf:"sslmode"`
	} `koanf:"db"`

	Redis struct {
		Addr string `koanf:"addr"`
	} `koanf:"redis"`

	JWT struct {
		Secret string `koanf:"secret"`
	} `koanf:"jwt"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

// Load reads configuration from defaults, an optional maru.toml and
// MARU_-prefixed environment variables, in that order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"server.port": "8080",
		"db.host":     "localhost",
		"db.port":     "5432",
		"db.user":     "maru",
		"db.password": "maru_dev_password",
		"db.name":     "maru",
		"db.sslmode":  "disable",
		"redis.addr":  "localhost:6379",
		"jwt.secret":  "dev-secret-change-me",
		"log.level":   "info",
	}, "."), nil)

	for _, path := range []string{"./maru.toml", "$HOME/.maru.toml"} {
		path = os.ExpandEnv(path)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
			break
		}
	}

	k.Load(env.Provider("MARU_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "MARU_")), "_", ".", -1)
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}
