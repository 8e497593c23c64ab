package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration. Variables are named
// <SECTION>_<FIELD>, e.g. DB_HOST or SCORING_GROQ_MODEL.
type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Database  DatabaseConfig  `envconfig:"DB"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Storage   StorageConfig   `envconfig:"STORAGE"`
	LiveKit   LiveKitConfig   `envconfig:"LIVEKIT"`
	Scoring   ScoringConfig   `envconfig:"SCORING"`
	Assembly  AssemblyConfig  `envconfig:"ASSEMBLYAI"`
	Interview InterviewConfig `envconfig:"INTERVIEW"`
	Stream    StreamConfig    `envconfig:"STREAM"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `split_words:"true" default:"8080"`
	Host            string        `split_words:"true" default:"0.0.0.0"`
	Environment     string        `split_words:"true" default:"development"`
	AllowedOrigins  []string      `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	LogJSON         bool          `split_words:"true" default:"false"`
	Debug           bool          `split_words:"true" default:"false"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `split_words:"true" default:"localhost"`
	Port     string `split_words:"true" default:"5432"`
	User     string `split_words:"true" default:"postgres"`
	Password string `split_words:"true" default:"postgres"`
	Name     string `split_words:"true" default:"interview_assistant"`
	SSLMode  string `split_words:"true" default:"disable"`
	MaxConns int    `split_words:"true" default:"25"`
	MinConns int    `split_words:"true" default:"5"`
	Migrate  bool   `split_words:"true" default:"true"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host          string        `split_words:"true" default:"localhost"`
	Port          string        `split_words:"true" default:"6379"`
	Password      string        `split_words:"true"`
	DB            int           `split_words:"true" default:"0"`
	LockTTL       time.Duration `split_words:"true" default:"10m"`
	EvaluationTTL time.Duration `split_words:"true" default:"24h"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Enabled         bool   `split_words:"true" default:"true"`
	Endpoint        string `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string `split_words:"true" default:"minioadmin"`
	SecretAccessKey string `split_words:"true" default:"minioadmin"`
	BucketName      string `split_words:"true" default:"interview-assistant"`
	UseSSL          bool   `split_words:"true" default:"false"`
	Region          string `split_words:"true" default:"us-east-1"`
}

// LiveKitConfig holds LiveKit configuration
type LiveKitConfig struct {
	URL       string        `split_words:"true" default:"ws://localhost:7880"`
	APIKey    string        `split_words:"true"`
	APISecret string        `split_words:"true"`
	Mock      bool          `split_words:"true" default:"false"`
	TokenTTL  time.Duration `split_words:"true" default:"2h"`

	// Record starts a room composite egress into the storage bucket
	Record          bool `split_words:"true" default:"false"`
	UnsignedWebhook bool `split_words:"true" default:"false"`
}

// ScoringConfig holds hosted scoring model configuration
type ScoringConfig struct {
	Provider      string        `split_words:"true" default:"groq"`
	GroqBaseURL   string        `split_words:"true" default:"https://api.groq.com"`
	GroqModel     string        `split_words:"true" default:"llama-3.3-70b-versatile"`
	GeminiModel   string        `split_words:"true" default:"gemini-2.5-flash"`
	Timeout       time.Duration `split_words:"true" default:"30s"`
	CredentialTTL time.Duration `split_words:"true" default:"5m"`
}

// AssemblyConfig holds AssemblyAI configuration for recording transcription
type AssemblyConfig struct {
	APIKey string `split_words:"true"`
}

// InterviewConfig holds interview defaults
type InterviewConfig struct {
	DefaultDuration  time.Duration `split_words:"true" default:"30m"`
	QuestionBankPath string        `split_words:"true" default:"configs/questions.yaml"`
	MinAnsweredRatio float64       `split_words:"true" default:"0.5"`
	EventBuffer      int           `split_words:"true" default:"256"`
	AgentPersona     string        `split_words:"true" default:"You are a friendly, professional interviewer."`
}

// StreamConfig holds configuration of the live event bridge
type StreamConfig struct {
	TicketSecret string        `split_words:"true" default:"change-me-in-production"`
	TicketTTL    time.Duration `split_words:"true" default:"2h"`
	ReadLimit    int64         `split_words:"true" default:"65536"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch strings.ToLower(c.Scoring.Provider) {
	case "groq", "gemini":
	default:
		return fmt.Errorf("SCORING_PROVIDER must be groq or gemini, got %q", c.Scoring.Provider)
	}
	if !c.LiveKit.Mock && (c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "") {
		return fmt.Errorf("LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required unless LIVEKIT_MOCK is set")
	}
	if c.Stream.TicketSecret == "" {
		return fmt.Errorf("STREAM_TICKET_SECRET is required")
	}
	if c.Interview.MinAnsweredRatio < 0 || c.Interview.MinAnsweredRatio > 1 {
		return fmt.Errorf("INTERVIEW_MIN_ANSWERED_RATIO must be within [0,1]")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
