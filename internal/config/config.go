package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mgpai22/lekh/internal/subtitle"
)

// looked up in the working directory when --config is not given
const DefaultFile = "lekh.yaml"

type Config struct {
	OutputDir  string           `yaml:"output_dir"`
	Formats    []string         `yaml:"formats"`
	Durable    bool             `yaml:"durable"`
	FFmpegPath string           `yaml:"ffmpeg_path"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
}

type TranscribeConfig struct {
	Provider           string `yaml:"provider"`
	Model              string `yaml:"model"`
	Language           string `yaml:"language"`
	TranscriptLanguage string `yaml:"transcript_language"`
	ChunkMinutes       int    `yaml:"chunk_minutes"`
	Concurrency        int    `yaml:"concurrency"`
}

func Default() Config {
	return Config{
		OutputDir: ".",
		Formats:   []string{"all"},
		Transcribe: TranscribeConfig{
			Provider:           "openai",
			TranscriptLanguage: "native",
			ChunkMinutes:       10,
			Concurrency:        3,
		},
	}
}

// Load reads path on top of Default. An empty path falls back to
// DefaultFile, which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.OutputFormats(); err != nil {
		return err
	}
	switch strings.ToLower(c.Transcribe.Provider) {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported transcription provider %q", c.Transcribe.Provider)
	}
	if c.Transcribe.ChunkMinutes < 1 {
		return fmt.Errorf("chunk_minutes must be at least 1, got %d", c.Transcribe.ChunkMinutes)
	}
	if c.Transcribe.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Transcribe.Concurrency)
	}
	return nil
}

// configured formats, "all" expanded
func (c Config) OutputFormats() ([]subtitle.Format, error) {
	return subtitle.ParseFormats(strings.Join(c.Formats, ","))
}
