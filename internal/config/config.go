// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env"`
	Backend         `yaml:"backend"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	Refresh         `yaml:"refresh"`
	PushPublicKey   string `yaml:"push_public_key"`
}

// Backend структура для настройки подключения к REST API Jobper
type Backend struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Storage структура для выбора и настройки локального хранилища сессии.
// Backend принимает значения: memory, file, redis, postgres.
type Storage struct {
	StorageBackend   string `yaml:"backend"`
	StatePath        string `yaml:"state_path"`
	ConnectionString string `yaml:"connection_string"`
}

// HTTPServer структура для настройки локального шлюза
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Refresh структура с интервалами фонового обновления сессии
type Refresh struct {
	ProfileInterval      time.Duration `yaml:"profile_interval" env-default:"30m"`
	SubscriptionInterval time.Duration `yaml:"subscription_interval" env-default:"5m"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Backend:\n"+
			"  BaseURL: %s\n"+
			"  RequestTimeout: %s\n"+
			"Storage:\n"+
			"  Backend: %s\n"+
			"  StatePath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Refresh:\n"+
			"  ProfileInterval: %s\n"+
			"  SubscriptionInterval: %s\n",
		c.Env,
		c.BaseURL,
		c.RequestTimeout,
		c.StorageBackend,
		c.StatePath,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.ProfileInterval,
		c.SubscriptionInterval,
	)
}
