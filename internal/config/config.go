package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Discord Bot
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// Control-plane API
	APIKey  string `env:"API_KEY,notEmpty"`
	WebBind string `env:"WEB_BIND" envDefault:"0.0.0.0:3001"`

	// External system of record
	BackendURL string `env:"BACKEND_URL,notEmpty"`

	// Local sound library for the /sound command
	SoundsDir string `env:"SOUNDS_DIR" envDefault:"sounds"`

	// Path to the ffmpeg binary used for media playback
	FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}
