package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every tunable the pipeline is constructed with. All values
// come from the environment (optionally via a .env file).
type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	AIAPIKey      string
	GenModel      string
	EmbedProvider string // gemini | openai | http
	EmbedEndpoint string // base URL for the openai/http providers
	EmbedModel    string
	EmbedDim      int
	MaxSeqLength  int
	TokenEncoding string // tiktoken encoding used to approximate the model's tokenizer

	OCRThreshold int
	OCRLanguages string

	ChunkSize       int
	ChunkOverlap    int
	OverlapRatio    float64
	Separators      []string
	MinParagraphLen int
	EnrichMinWords  int

	Workers int
}

// LoadConfig loads the environment variables and returns the config.
// Missing critical settings are fatal; tuning knobs fall back to defaults.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "ingesta-docs"),

		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GenModel:      getEnv("GEN_MODEL", "gemini-1.5-flash"),
		EmbedProvider: getEnv("EMBED_PROVIDER", "http"),
		EmbedEndpoint: getEnv("EMBED_ENDPOINT", "http://localhost:11435"),
		EmbedModel:    getEnv("EMBED_MODEL", "all-MiniLM-L6-v2"),
		EmbedDim:      getEnvInt("EMBED_DIM", 384),
		MaxSeqLength:  getEnvInt("MAX_SEQ_LENGTH", 256),
		TokenEncoding: getEnv("TOKEN_ENCODING", "cl100k_base"),

		OCRThreshold: getEnvInt("OCR_THRESHOLD", 100),
		OCRLanguages: getEnv("OCR_LANGUAGES", "por+eng"),

		ChunkSize:       getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 50),
		OverlapRatio:    getEnvFloat("SLIDING_WINDOW_OVERLAP_RATIO", 0.1),
		Separators:      strings.Split(getEnv("SEPARATORS", "\n\n|\n| "), "|"),
		MinParagraphLen: getEnvInt("MIN_PARAGRAPH_LEN", 50),
		EnrichMinWords:  getEnvInt("ENRICH_MIN_WORDS", 10),

		Workers: getEnvInt("WORKERS", 2),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Validate checks the settings the pipeline cannot run without. Tuning knobs
// are range-checked so a bad value never silently produces zero-size windows.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.EmbedModel == "" {
		missing = append(missing, "EMBED_MODEL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing critical settings: %s", strings.Join(missing, ", "))
	}
	if c.EmbedDim <= 0 {
		return fmt.Errorf("EMBED_DIM must be positive, got %d", c.EmbedDim)
	}
	if c.MaxSeqLength <= 0 {
		return fmt.Errorf("MAX_SEQ_LENGTH must be positive, got %d", c.MaxSeqLength)
	}
	if c.OverlapRatio < 0 || c.OverlapRatio >= 1 {
		return fmt.Errorf("SLIDING_WINDOW_OVERLAP_RATIO must be in [0,1), got %g", c.OverlapRatio)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}
