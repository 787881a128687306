// Package config assembles runtime settings from built-in defaults and
// STEMFORGE_* environment variables. Command-line flags override both.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings shared by the process and generate
// commands.
type Config struct {
	// Audio
	SampleRate int
	TargetLufs float64

	// Mix gains in dB
	VocalsGainDb float64
	DrumsGainDb  float64
	BassGainDb   float64
	OtherGainDb  float64

	// External tools
	PythonBin string
	FFmpegBin string

	// Separation
	DemucsModel     string
	SeparateTimeout time.Duration

	// Mastering
	MasterTimeout time.Duration
	HumNotch      bool

	// Generation
	GenerateScript  string
	GeneratePrompt  string
	GenerateSeconds float64
	GenerateTimeout time.Duration

	// Output
	OutputDir string
}

// Load returns the configuration with environment overrides applied.
func Load() *Config {
	return &Config{
		SampleRate: envInt("STEMFORGE_SAMPLE_RATE", 44100),
		TargetLufs: envFloat("STEMFORGE_TARGET_LUFS", -10.0),

		VocalsGainDb: envFloat("STEMFORGE_VOCALS_GAIN_DB", 0),
		DrumsGainDb:  envFloat("STEMFORGE_DRUMS_GAIN_DB", 0),
		BassGainDb:   envFloat("STEMFORGE_BASS_GAIN_DB", 0),
		OtherGainDb:  envFloat("STEMFORGE_OTHER_GAIN_DB", 0),

		PythonBin: envStr("STEMFORGE_PYTHON_BIN", "python3"),
		FFmpegBin: envStr("STEMFORGE_FFMPEG_BIN", "ffmpeg"),

		DemucsModel:     envStr("STEMFORGE_DEMUCS_MODEL", "htdemucs"),
		SeparateTimeout: envDuration("STEMFORGE_SEPARATE_TIMEOUT", 0),

		MasterTimeout: envDuration("STEMFORGE_MASTER_TIMEOUT", 0),
		HumNotch:      envBool("STEMFORGE_HUM_NOTCH", false),

		GenerateScript:  envStr("STEMFORGE_GENERATE_SCRIPT", "scripts/musicgen.py"),
		GeneratePrompt:  envStr("STEMFORGE_GENERATE_PROMPT", ""),
		GenerateSeconds: envFloat("STEMFORGE_GENERATE_SECONDS", 30.0),
		GenerateTimeout: envDuration("STEMFORGE_GENERATE_TIMEOUT", 0),

		OutputDir: envStr("STEMFORGE_OUTPUT_DIR", "./outputs"),
	}
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
