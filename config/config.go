package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      int
	JWTSecret       string
	TokenTTLMinutes int
	LogLevel        string
	Influx          InfluxConfig
	Notify          NotifyConfig
}

type InfluxConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	Database       string
	TimeoutSeconds int
}

type NotifyConfig struct {
	// Backend selects the outbound alert transport: "rabbitmq", "pubsub",
	// "webhook", or empty to disable notifications.
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
	Webhook  WebhookConfig
}

type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

type WebhookConfig struct {
	EventURL string
	SOSURL   string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	influxConfig := InfluxConfig{
		Host:           getEnv("INFLUXDB_HOST", "localhost"),
		Port:           getEnvInt("INFLUXDB_PORT", 8086),
		Username:       getEnv("INFLUXDB_USERNAME", ""),
		Password:       getEnv("INFLUXDB_PASSWORD", ""),
		Database:       getEnv("INFLUXDB_DATABASE", "driver_monitoring"),
		TimeoutSeconds: getEnvInt("INFLUXDB_TIMEOUT_SECONDS", 5),
	}

	notifyConfig := NotifyConfig{
		Backend: getEnv("NOTIFY_BACKEND", ""),
		RabbitMQ: RabbitMQConfig{
			URL:          getEnv("RABBITMQ_URL", ""),
			QueueDurable: getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
		},
		PubSub: PubSubConfig{
			ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		},
		Webhook: WebhookConfig{
			EventURL: getEnv("HTTP_EVENT_API", ""),
			SOSURL:   getEnv("HTTP_SOS_API", ""),
		},
	}

	return Config{
		ServerPort:      getEnvInt("SERVER_PORT", 8000),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 300),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Influx:          influxConfig,
		Notify:          notifyConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return defaultValue
}
