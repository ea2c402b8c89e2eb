package env

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	envparse "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvValue is the process configuration read from the environment.
type EnvValue struct {
	ServerPort       int     `env:"SERVER_PORT" envDefault:"8080"`
	DBPath           string  `env:"DB_PATH" envDefault:"name-picker.db"`
	DebugMode        bool    `env:"DEBUG_MODE" envDefault:"false"`
	FrameIntervalMS  int     `env:"FRAME_INTERVAL_MS" envDefault:"16"`
	TuningPath       string  `env:"TUNING_PATH" envDefault:"tuning.yaml"`
	DefaultMode      string  `env:"DRAW_MODE" envDefault:"wheel"`
	DefaultSpeed     float64 `env:"DRAW_SPEED" envDefault:"1"`
	WeightingEnabled bool    `env:"WEIGHTING_ENABLED" envDefault:"true"`
	PublicURL        string  `env:"PUBLIC_URL"`
}

// Value holds the loaded configuration.
var Value EnvValue

// FrameInterval returns the driver tick interval.
func (v EnvValue) FrameInterval() time.Duration {
	if v.FrameIntervalMS <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(v.FrameIntervalMS) * time.Millisecond
}

// Load reads the given dotenv files (missing files are skipped) and parses
// the environment. Variables already set in the process win over the files.
func Load(files ...string) (EnvValue, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return EnvValue{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var v EnvValue
	if err := envparse.Parse(&v); err != nil {
		return EnvValue{}, fmt.Errorf("parse env: %w", err)
	}
	if v.ServerPort <= 0 || v.ServerPort > 65535 {
		return EnvValue{}, fmt.Errorf("invalid SERVER_PORT: %d", v.ServerPort)
	}
	return v, nil
}

// LoadEnv loads configuration into Value.
func LoadEnv(files ...string) error {
	v, err := Load(files...)
	if err != nil {
		return err
	}
	Value = v
	return nil
}
