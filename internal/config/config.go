package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	WorkerID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Detector (external pretrained model served over gRPC)
	DetectorGRPCURL     string
	DetectorTimeout     time.Duration
	ConfidenceThreshold float64
	SpeciesConfigPath   string // optional YAML with vocabulary/priority overrides

	// Live stream
	LiveSampleInterval int // Run detection on every Nth frame of a live stream
	LiveStopTimeout    time.Duration

	// Uploads and processed output
	UploadDir         string
	ProcessedDir      string
	MaxUploadSize     int64 // bytes
	AllowedExtensions []string

	// Detection history
	HistoryFile  string
	HistoryLimit int

	// Email alerts
	SMTPHost         string
	SMTPPort         int
	EmailUser        string
	EmailPass        string
	FromName         string
	AlertEmail       string
	MaxEmailsPerHour int
	MinAlertInterval time.Duration
	RateLimitFile    string
	SMTPTimeout      time.Duration

	// Async alert dispatch
	AlertQueueSize  int
	AlertRetries    int
	AlertBackoffMax time.Duration

	// Snapshot images attached to alerts
	ImageQuality   int // JPEG quality (1-100)
	MaxImageWidth  int
	MaxImageHeight int

	// NATS (detection and alert events)
	// Default: nats://localhost:4222
	// Docker: Use nats://nats:4222 if running in Docker
	NatsEnabled         bool
	NatsURL             string
	NatsConnectTimeout  time.Duration
	NatsReconnectWait   time.Duration
	NatsMaxReconnects   int
	EventsSubjectPrefix string

	// Swagger Configuration
	SwaggerHost string
	SwaggerPort int

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	emailUser := getEnv("EMAIL_USER", "")

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		WorkerID:    getEnv("WORKER_ID", "farmwatch-1"),
		Port:        getEnvInt("PORT", 5003),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Detector
		DetectorGRPCURL:     getEnv("DETECTOR_GRPC_URL", "localhost:50051"),
		DetectorTimeout:     getEnvDuration("DETECTOR_TIMEOUT", 5*time.Second),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.6),
		SpeciesConfigPath:   getEnv("SPECIES_CONFIG", ""),

		// Live stream
		LiveSampleInterval: getEnvInt("LIVE_SAMPLE_INTERVAL", 30),
		LiveStopTimeout:    getEnvDuration("LIVE_STOP_TIMEOUT", 10*time.Second),

		// Uploads
		UploadDir:         getEnv("UPLOAD_DIR", "static/uploads"),
		ProcessedDir:      getEnv("PROCESSED_DIR", "static/processed"),
		MaxUploadSize:     int64(getEnvInt("MAX_UPLOAD_SIZE", 500*1024*1024)), // 500MB
		AllowedExtensions: getEnvList("ALLOWED_EXTENSIONS", []string{"mp4", "avi", "mov", "mkv", "wmv", "flv", "webm"}),

		// History
		HistoryFile:  getEnv("HISTORY_FILE", "detection_records.json"),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 100),

		// Email alerts
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		EmailUser:        emailUser,
		EmailPass:        getEnv("EMAIL_PASS", ""),
		FromName:         getEnv("FROM_NAME", "Farm Animal Detection System"),
		AlertEmail:       getEnv("ALERT_EMAIL", emailUser),
		MaxEmailsPerHour: getEnvInt("MAX_EMAILS_PER_HOUR", 10),
		MinAlertInterval: getEnvDuration("MIN_ALERT_INTERVAL", 5*time.Minute),
		RateLimitFile:    getEnv("RATE_LIMIT_FILE", "email_rate_limit.json"),
		SMTPTimeout:      getEnvDuration("SMTP_TIMEOUT", 15*time.Second),

		// Async alert dispatch
		AlertQueueSize:  getEnvInt("ALERT_QUEUE_SIZE", 16),
		AlertRetries:    getEnvInt("ALERT_RETRIES", 3),
		AlertBackoffMax: getEnvDuration("ALERT_BACKOFF_MAX", 30*time.Second),

		// Snapshot images
		ImageQuality:   getEnvInt("IMAGE_QUALITY", 90),
		MaxImageWidth:  getEnvInt("MAX_IMAGE_WIDTH", 1280),
		MaxImageHeight: getEnvInt("MAX_IMAGE_HEIGHT", 720),

		// NATS
		NatsEnabled:         getEnvBool("NATS_ENABLED", false),
		NatsURL:             getNatsURL(),
		NatsConnectTimeout:  getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:   getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:   getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		EventsSubjectPrefix: getEnv("EVENTS_SUBJECT_PREFIX", "farmwatch"),

		// Swagger Configuration
		SwaggerHost: getEnv("SWAGGER_HOST", "localhost"),
		SwaggerPort: getEnvInt("SWAGGER_PORT", 5003),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// EmailConfigured reports whether SMTP credentials are present.
func (c *Config) EmailConfigured() bool {
	return c.EmailUser != "" && c.EmailPass != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, strings.TrimPrefix(part, "."))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
