package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// Startup capability flags replacing the per-request probing of the
	// optional passengers/receipts tables.
	PersistPassengers bool `yaml:"persist_passengers"`
	PersistReceipts   bool `yaml:"persist_receipts"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	// Per-flight lock: how long a holder may keep it and how long a waiter
	// queues before failing with a lock timeout.
	LockTTLSeconds     int     `yaml:"lock_ttl_seconds"`
	LockWaitMillis     int     `yaml:"lock_wait_millis"`
	QuotesCacheTTL     int     `yaml:"quotes_cache_ttl_seconds"`
	ReferenceAttempts  int     `yaml:"reference_attempts"`
	PaymentSuccessRate float64 `yaml:"payment_success_rate"`
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitMillis) * time.Millisecond
}

type WorkerConfig struct {
	SimulationIntervalSeconds int `yaml:"simulation_interval_seconds"`
	SimulationMaxSeats        int `yaml:"simulation_max_seats"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
