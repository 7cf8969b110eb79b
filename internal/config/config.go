package config

import (
	"os"
)

type Config struct {
	HTTP_PORT          string `env:"HTTP_PORT"`
	DB_STRING          string `env:"DB_STRING"`
	REDIS_ADDR         string `env:"REDIS_ADDR"`
	KAFKA_BROKERS      string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC        string `env:"KAFKA_TOPIC"`
	KAFKA_ORDERS_TOPIC string `env:"KAFKA_ORDERS_TOPIC"`
	KAFKA_GROUP_ID     string `env:"KAFKA_GROUP_ID"`
	MIGRATE            bool   `env:"MIGRATE"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:          os.Getenv("HTTP_PORT"),
		DB_STRING:          os.Getenv("DB_STRING"),
		REDIS_ADDR:         os.Getenv("REDIS_ADDR"),
		KAFKA_BROKERS:      os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:        os.Getenv("KAFKA_TOPIC"),
		KAFKA_ORDERS_TOPIC: os.Getenv("KAFKA_ORDERS_TOPIC"),
		KAFKA_GROUP_ID:     os.Getenv("KAFKA_GROUP_ID"),
		MIGRATE:            os.Getenv("MIGRATE") == "1",
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.REDIS_ADDR == "" {
		cfg.REDIS_ADDR = "localhost:6379"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "order-notifications"
	}
	if cfg.KAFKA_GROUP_ID == "" {
		cfg.KAFKA_GROUP_ID = "order-lifecycle-service"
	}

	return cfg, nil
}
