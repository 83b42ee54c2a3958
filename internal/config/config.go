package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Kafka      KafkaConfig
	QuoteFeed  QuoteFeedConfig
	Auth       AuthConfig
	Simulation SimulationConfig
	Logging    LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  string
	ClientID string
	Topics   map[string]string
}

// BrokerList splits the comma-separated broker string
func (k KafkaConfig) BrokerList() []string {
	return strings.Split(k.Brokers, ",")
}

// QuoteFeedConfig holds configuration for the price quote collaborator
type QuoteFeedConfig struct {
	URL     string
	Timeout time.Duration
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	ServiceKey string
}

// SimulationConfig holds default simulation parameters
type SimulationConfig struct {
	DefaultInitialBalance float64
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8086")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.clientID", "simulation-service")
	v.SetDefault("kafka.topics.simulationEvents", "simulation-events")

	// Quote feed defaults
	v.SetDefault("quotefeed.timeout", "5s")

	// Simulation defaults
	v.SetDefault("simulation.defaultInitialBalance", 10000)

	// Auth defaults
	v.SetDefault("auth.serviceKey", "simulation-service-key")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
