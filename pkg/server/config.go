package server

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/babelbridge/babelbridge/pkg/jsontime"
)

// Config is the YAML-file configuration for the service.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string `yaml:"addr"`

	Audio     AudioConfig     `yaml:"audio"`
	VAD       VADConfig       `yaml:"vad"`
	ASR       ASRConfig       `yaml:"asr"`
	Translate TranslateConfig `yaml:"translate"`
	TTS       TTSConfig       `yaml:"tts"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Log       LogConfig       `yaml:"log"`
}

// AudioConfig tunes utterance segmentation.
type AudioConfig struct {
	// AnalysisWindow is the buffered duration before the probe starts
	// evaluating. Zero means the segmenter default (1s).
	AnalysisWindow jsontime.Duration `yaml:"analysis_window"`

	// MinUtterance is the shortest buffer that may be finalized. Zero means
	// the segmenter default (500ms).
	MinUtterance jsontime.Duration `yaml:"min_utterance"`
}

// VADConfig selects and tunes the voice activity probe.
type VADConfig struct {
	// Kind is "energy" (built-in RMS probe, the default) or "http" (sidecar).
	Kind string `yaml:"kind"`

	// URL is the sidecar endpoint for kind "http".
	URL string `yaml:"url"`

	// Threshold is the energy probe's normalized RMS speech level.
	Threshold float64 `yaml:"threshold"`

	// Timeout bounds each probe call. Zero means the segmenter default (5s).
	Timeout jsontime.Duration `yaml:"timeout"`
}

// ASRConfig points at the transcription sidecar.
type ASRConfig struct {
	URL string `yaml:"url"`
}

// TranslateConfig points at the chat-completions translation backend.
type TranslateConfig struct {
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	Model string `yaml:"model"`
}

// APIKey resolves the configured API key from the environment.
func (c TranslateConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// TTSConfig points at the synthesis gateway.
type TTSConfig struct {
	URL string `yaml:"url"`

	// Voices maps language codes to voice names. Empty entries fall back to
	// the built-in defaults.
	Voices map[string]string `yaml:"voices"`
}

// PipelineConfig tunes per-utterance processing.
type PipelineConfig struct {
	// StageTimeout bounds each collaborator call. Zero means the pipeline
	// default (30s).
	StageTimeout jsontime.Duration `yaml:"stage_timeout"`
}

// LogConfig configures the transcript sinks.
type LogConfig struct {
	// Dir is the directory for JSONL day files. Default "logs".
	Dir string `yaml:"dir"`

	// BadgerDir enables the badger-backed store when non-empty.
	BadgerDir string `yaml:"badger_dir"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr: ":8000",
		VAD:  VADConfig{Kind: "energy"},
		Log:  LogConfig{Dir: "logs"},
	}
}

// LoadConfig reads and parses a YAML config file, applying defaults for
// omitted fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("server: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("server: parse config %s: %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.VAD.Kind == "" {
		cfg.VAD.Kind = "energy"
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	return cfg, nil
}
