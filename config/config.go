package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Clips    ClipsConfig
	Metadata MetadataConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// ClipsConfig holds clip pipeline settings.
type ClipsConfig struct {
	// Domain is the public host in success URLs: https://{Domain}/{account}/{clip}.
	Domain string
	// WorkDir holds rendered clips between transcode and upload; empty = os.TempDir().
	WorkDir string
	// FfmpegPath overrides PATH resolution of the encoding engine binary.
	FfmpegPath string
	// SegmentFetchTimeoutSec bounds each segment download; 0 disables the client timeout.
	SegmentFetchTimeoutSec int
}

// MetadataConfig holds the clip metadata store settings.
type MetadataConfig struct {
	// TableName names the metadata table the status recorder updates.
	TableName string
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout: getEnvInt("WRITE_TIMEOUT_SEC", 300),
		},
		Clips: ClipsConfig{
			Domain:                 getEnv("PUBLIC_CLIP_DOMAIN", "smartclips.app"),
			WorkDir:                getEnv("CLIP_WORK_DIR", ""),
			FfmpegPath:             getEnv("FFMPEG_PATH", ""),
			SegmentFetchTimeoutSec: getEnvInt("SEGMENT_FETCH_TIMEOUT_SEC", 60),
		},
		Metadata: MetadataConfig{
			TableName: getEnv("DYNAMO_TABLE_NAME", ""),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
