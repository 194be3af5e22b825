package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage    string `yaml:"storage" env:"STORAGE" env-default:"redis"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	// FinishedTTL is how long a finished game stays readable.
	FinishedTTL time.Duration `yaml:"finished-ttl" env:"GAME_FINISHED_TTL" env-default:"24h"`
	// Seed fixes the shuffle for reproducible runs; zero picks a random one.
	Seed int64 `yaml:"seed" env:"GAME_SEED" env-default:"0"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
