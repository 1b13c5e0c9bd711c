// Package config loads the server configuration from an optional YAML file,
// environment variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvElevenLabsAPIKey   = "ELEVENLABS_API_KEY"
	EnvGoogleCredentials  = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvPronunciationPort  = "PRONUNCIATION_PORT"
	EnvPronunciationCache = "PRONUNCIATION_AUDIO_DIR"
)

// Config is the top-level server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Scoring ScoringConfig `yaml:"scoring"`
	Speech  SpeechConfig  `yaml:"speech"`
}

// ServerConfig controls the HTTP listener and logging.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxRequestSize int           `yaml:"max_request_size"`
	// Concurrency limits concurrent requests; 0 uses the fasthttp default.
	Concurrency int    `yaml:"concurrency"`
	WarmUp      bool   `yaml:"warm_up"`
	LogFile     string `yaml:"log_file"`
	LogJSON     bool   `yaml:"log_json"`
}

// ScoringConfig selects scorer components.
type ScoringConfig struct {
	Threshold int `yaml:"threshold"`
	// Normalizer is "default" or "fast".
	Normalizer string `yaml:"normalizer"`
	// Distance is "builtin" or "matchr".
	Distance      string `yaml:"distance"`
	PhoneticHints bool   `yaml:"phonetic_hints"`
}

// SpeechConfig configures the optional speech collaborators.
type SpeechConfig struct {
	Language        string           `yaml:"language"`
	MaxAlternatives int              `yaml:"max_alternatives"`
	AudioDir        string           `yaml:"audio_dir"`
	// AudioURLPrefix is the public path that serves AudioDir.
	AudioURLPrefix  string           `yaml:"audio_url_prefix"`
	Google          GoogleConfig     `yaml:"google"`
	ElevenLabs      ElevenLabsConfig `yaml:"elevenlabs"`
}

// GoogleConfig enables Google Cloud Speech-to-Text.
type GoogleConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
}

// ElevenLabsConfig enables ElevenLabs synthesis. The API key is only read
// from the environment.
type ElevenLabsConfig struct {
	Enabled bool   `yaml:"enabled"`
	VoiceID string `yaml:"voice_id"`
	ModelID string `yaml:"model_id"`
	APIKey  string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxRequestSize: 10 * 1024 * 1024, // 10MB
			WarmUp:         true,
			LogJSON:        true,
		},
		Scoring: ScoringConfig{
			Threshold:  70,
			Normalizer: "fast",
			Distance:   "builtin",
		},
		Speech: SpeechConfig{
			Language:        "en-US",
			MaxAlternatives: 1,
			AudioDir:        "./uploads/audio",
			AudioURLPrefix:  "/uploads/audio",
		},
	}
}

// Load reads the YAML file at path on top of Default. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, Validate(cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r on top of Default and validates it.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files. Missing files are
// ignored; existing environment variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %q: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if key := os.Getenv(EnvElevenLabsAPIKey); key != "" {
		cfg.Speech.ElevenLabs.APIKey = key
	}
	if cfg.Speech.Google.CredentialsFile == "" {
		cfg.Speech.Google.CredentialsFile = os.Getenv(EnvGoogleCredentials)
	}
	if port := os.Getenv(EnvPronunciationPort); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			cfg.Server.Port = p
		}
	}
	if dir := os.Getenv(EnvPronunciationCache); dir != "" {
		cfg.Speech.AudioDir = dir
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", cfg.Server.Port))
	}
	if cfg.Server.MaxRequestSize <= 0 {
		errs = append(errs, errors.New("server.max_request_size must be positive"))
	}
	if cfg.Server.Concurrency < 0 {
		errs = append(errs, errors.New("server.concurrency must not be negative"))
	}
	if cfg.Scoring.Threshold < 0 || cfg.Scoring.Threshold > 100 {
		errs = append(errs, fmt.Errorf("scoring.threshold %d must be between 0 and 100", cfg.Scoring.Threshold))
	}
	switch cfg.Scoring.Normalizer {
	case "", "default", "fast":
	default:
		errs = append(errs, fmt.Errorf("scoring.normalizer %q is invalid; valid values: default, fast", cfg.Scoring.Normalizer))
	}
	switch cfg.Scoring.Distance {
	case "", "builtin", "matchr":
	default:
		errs = append(errs, fmt.Errorf("scoring.distance %q is invalid; valid values: builtin, matchr", cfg.Scoring.Distance))
	}
	if cfg.Speech.MaxAlternatives < 0 {
		errs = append(errs, errors.New("speech.max_alternatives must not be negative"))
	}
	if !strings.HasPrefix(cfg.Speech.AudioURLPrefix, "/") || strings.Trim(cfg.Speech.AudioURLPrefix, "/") == "" {
		errs = append(errs, fmt.Errorf("speech.audio_url_prefix %q must be an absolute path below /", cfg.Speech.AudioURLPrefix))
	}
	if cfg.Speech.ElevenLabs.Enabled && cfg.Speech.AudioDir == "" {
		errs = append(errs, errors.New("speech.audio_dir is required when elevenlabs is enabled"))
	}

	return errors.Join(errs...)
}
