package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GRPCPort         string
	HTTPPort         string
	DetectorURL      string
	DetectorTimeout  time.Duration
	CORSOrigins      string
	MaxMessageSizeMB int
	LogLevel         string
	Environment      string

	AuthorityURL      string
	EscalationTimeout time.Duration

	PoseConcurrency int
	Weights         Weights

	// Sessions without frames for SessionIdleTimeout are dropped unless an
	// observer is attached. Zero disables eviction.
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	AdminKeyHash string

	// DBDriver selects the alert journal backend: "pgx", "sqlite" or "" (disabled).
	DBDriver   string
	DBPath     string
	DBName     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	MQTTQoS         int
	MQTTPayload     string
}

// Weights are the score increments applied by the fusion policy.
type Weights struct {
	MultipleFaces    int
	NoFaces          int
	NonFrontalPose   int
	SuspiciousObject int
	SuspiciousGaze   int
}

func (p *Config) DSN() string {
	if p.DBDriver == "sqlite" {
		return p.DBPath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.DBHost, p.DBPort, p.DBUser, p.DBPassword, p.DBName, p.DBSSLMode)
}

// DSNForLog returns the DSN with the password masked.
func (p *Config) DSNForLog() string {
	if p.DBDriver == "sqlite" {
		return p.DBPath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=*** dbname=%s sslmode=%s",
		p.DBHost, p.DBPort, p.DBUser, p.DBName, p.DBSSLMode)
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func (c *Config) JournalEnabled() bool {
	return c.DBDriver != ""
}

func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func LoadConfig() *Config {
	// A missing .env is fine; the process environment is used instead.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		GRPCPort:          getEnv("GRPC_PORT", "50051"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		DetectorURL:       getEnv("DETECTOR_URL", "localhost:9000"),
		DetectorTimeout:   getEnvDuration("DETECTOR_TIMEOUT", 5*time.Second),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		MaxMessageSizeMB:  getEnvInt("MAX_MESSAGE_SIZE_MB", 50),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		Environment:       getEnv("ENVIRONMENT", "production"),
		AuthorityURL:      getEnv("AUTHORITY_URL", "http://localhost:8000"),
		EscalationTimeout: getEnvDuration("ESCALATION_TIMEOUT", 10*time.Second),
		PoseConcurrency:   getEnvInt("POSE_CONCURRENCY", 4),
		Weights: Weights{
			MultipleFaces:    getEnvInt("WEIGHT_MULTIPLE_FACES", 20),
			NoFaces:          getEnvInt("WEIGHT_NO_FACES", 10),
			NonFrontalPose:   getEnvInt("WEIGHT_NON_FRONTAL_POSE", 5),
			SuspiciousObject: getEnvInt("WEIGHT_SUSPICIOUS_OBJECT", 15),
			SuspiciousGaze:   getEnvInt("WEIGHT_SUSPICIOUS_GAZE", 5),
		},

		SessionIdleTimeout:   getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		AdminKeyHash:    getEnv("ADMIN_KEY_HASH", ""),
		DBDriver:        getEnv("DB_DRIVER", ""),
		DBPath:          getEnv("DB_PATH", "proctor.db"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "exam_proctor"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "exam-proctor"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "proctor/alerts"),
		MQTTQoS:         getEnvInt("MQTT_QOS", 1),
		MQTTPayload:     getEnv("MQTT_PAYLOAD", "json"),
	}

	if cfg.DBDriver == "pgx" && cfg.DBPassword == "" {
		fmt.Println("WARNING: DB_PASSWORD is not set!")
	}
	if cfg.PoseConcurrency < 1 {
		cfg.PoseConcurrency = 1
	}

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
