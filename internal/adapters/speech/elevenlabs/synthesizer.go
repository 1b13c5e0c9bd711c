// Package elevenlabs implements ports.AudioSynthesizer against the
// ElevenLabs text-to-speech REST API.
package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM" // Rachel voice
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "mp3_44100_128"
	defaultStability    = 0.5
	defaultClarity      = 0.75
	defaultTimeout      = 30 * time.Second
)

// Config holds configuration for the synthesizer. Only APIKey is required.
type Config struct {
	APIKey       string
	APIBaseURL   string
	VoiceID      string
	ModelID      string
	OutputFormat string
	// Stability and Clarity are nil for the defaults; 0 is a valid setting.
	Stability *float64
	Clarity   *float64
	Timeout      time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *fasthttp.Client
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("eleven labs API key is required")
	}
	if c.Stability != nil && (*c.Stability < 0 || *c.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", *c.Stability)
	}
	if c.Clarity != nil && (*c.Clarity < 0 || *c.Clarity > 1) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", *c.Clarity)
	}
	return nil
}

// Float returns a pointer to v for the optional voice settings.
func Float(v float64) *float64 {
	return &v
}

// acceptTypes maps the output format prefix to the Accept header.
var acceptTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"pcm":  "audio/pcm",
	"ulaw": "audio/basic",
	"alaw": "audio/basic",
	"opus": "audio/opus",
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type request struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	LanguageCode  string        `json:"language_code,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesizer renders phrases to audio with ElevenLabs.
type Synthesizer struct {
	cfg    Config
	client *fasthttp.Client
	logger ports.Logger
}

var _ ports.AudioSynthesizer = (*Synthesizer)(nil)

// New validates cfg, applies defaults and returns a synthesizer.
func New(cfg Config, logger ports.Logger) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.VoiceID == "" {
		cfg.VoiceID = defaultVoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = defaultModelID
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = defaultOutputFormat
	}
	if cfg.Stability == nil {
		cfg.Stability = Float(defaultStability)
	}
	if cfg.Clarity == nil {
		cfg.Clarity = Float(defaultClarity)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:         "go_pronunciation",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		}
	}

	return &Synthesizer{cfg: cfg, client: client, logger: logger}, nil
}

// Format returns the file extension of the produced audio.
func (s *Synthesizer) Format() string {
	format, _, _ := strings.Cut(s.cfg.OutputFormat, "_")
	return format
}

func (s *Synthesizer) acceptType() string {
	if accept, ok := acceptTypes[s.Format()]; ok {
		return accept
	}
	return "*/*"
}

// Synthesize requests audio for text. language is a BCP-47 tag; only its
// primary subtag is sent.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is required")
	}

	lang, _, _ := strings.Cut(language, "-")
	body, err := json.Marshal(request{
		Text:         text,
		ModelID:      s.cfg.ModelID,
		LanguageCode: strings.ToLower(lang),
		VoiceSettings: voiceSettings{
			Stability:       *s.cfg.Stability,
			SimilarityBoost: *s.cfg.Clarity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", s.cfg.APIBaseURL, s.cfg.VoiceID, s.cfg.OutputFormat))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", s.acceptType())
	req.Header.Set("xi-api-key", s.cfg.APIKey)
	req.SetBody(body)

	timeout := s.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("failed to call eleven labs: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("eleven labs returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	audio := append([]byte(nil), resp.Body()...)
	s.logger.Debug("Synthesized speech",
		"chars", len(text),
		"language", language,
		"bytes", len(audio),
		"duration", time.Since(start),
	)
	return audio, nil
}
