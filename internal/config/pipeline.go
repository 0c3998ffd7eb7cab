package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TranscodeProfile is one rung of the bitrate ladder.
type TranscodeProfile struct {
	Name         string `yaml:"name"`
	Height       int    `yaml:"height"`
	VideoBitrate string `yaml:"video_bitrate"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

// PipelineConfig tunes the processing pipeline. Target languages are a
// deployment-level decision, never user input.
type PipelineConfig struct {
	Profiles             []TranscodeProfile `yaml:"profiles"`
	SourceLanguage       string             `yaml:"source_language"`
	TargetLanguages      []string           `yaml:"target_languages"`
	Workers              int                `yaml:"workers"`
	TranscodeConcurrency int                `yaml:"transcode_concurrency"`
	TranslateConcurrency int                `yaml:"translate_concurrency"`
}

// DefaultPipelineConfig mirrors the stock deployment: a four-rung
// ladder from 1080p down to 360p, English source, Spanish translation.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Profiles: []TranscodeProfile{
			{Name: "1080p", Height: 1080, VideoBitrate: "5000k", AudioBitrate: "192k"},
			{Name: "720p", Height: 720, VideoBitrate: "2800k", AudioBitrate: "128k"},
			{Name: "480p", Height: 480, VideoBitrate: "1400k", AudioBitrate: "128k"},
			{Name: "360p", Height: 360, VideoBitrate: "800k", AudioBitrate: "96k"},
		},
		SourceLanguage:       "en",
		TargetLanguages:      []string{"es"},
		Workers:              2,
		TranscodeConcurrency: 2,
		TranslateConcurrency: 4,
	}
}

// LoadPipelineConfig reads a YAML pipeline config, filling anything
// unset from the defaults. A missing file yields the defaults.
func LoadPipelineConfig(path string) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(os.ExpandEnv(path))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		cfg.Profiles = DefaultPipelineConfig().Profiles
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.TranscodeConcurrency <= 0 {
		cfg.TranscodeConcurrency = 2
	}
	if cfg.TranslateConcurrency <= 0 {
		cfg.TranslateConcurrency = 4
	}
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "en"
	}
	return cfg, nil
}
