// Package google implements ports.Recognizer with Google Cloud
// Speech-to-Text synchronous recognition.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

const (
	defaultLanguage        = "en-US"
	defaultMaxAlternatives = 1

	// MaxSampleRate is the highest sample rate accepted, in Hz.
	MaxSampleRate = 192000
	// MaxAlternatives is the Speech-to-Text limit on hypotheses per request.
	MaxAlternatives = 30
)

// Config holds configuration for the Google recognizer.
type Config struct {
	// CredentialsFile is an optional service account JSON file. When empty the
	// application default credentials are used.
	CredentialsFile string
	// DefaultLanguage is used when a request carries no language tag.
	DefaultLanguage string
}

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// Recognizer runs one Recognize call per attempt.
type Recognizer struct {
	recognize       recognizeFunc
	close           func() error
	defaultLanguage string
	logger          ports.Logger
}

var _ ports.Recognizer = (*Recognizer)(nil)

// NewRecognizer creates a Google Speech client and wraps it as a recognizer.
func NewRecognizer(ctx context.Context, cfg Config, logger ports.Logger) (*Recognizer, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return newRecognizer(
		func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return client.Recognize(ctx, req)
		},
		client.Close,
		cfg,
		logger,
	), nil
}

func newRecognizer(recognize recognizeFunc, closeFn func() error, cfg Config, logger ports.Logger) *Recognizer {
	lang := cfg.DefaultLanguage
	if lang == "" {
		lang = defaultLanguage
	}
	return &Recognizer{
		recognize:       recognize,
		close:           closeFn,
		defaultLanguage: lang,
		logger:          logger,
	}
}

// RecognizeOnce sends the request audio for synchronous recognition. A
// response without results resolves to a Recognition with no alternatives.
func (r *Recognizer) RecognizeOnce(ctx context.Context, req domain.RecognitionRequest) (domain.Recognition, error) {
	if len(req.Audio) == 0 {
		return domain.Recognition{}, errors.New("no audio data received")
	}

	if req.SampleRate < 0 || req.SampleRate > MaxSampleRate {
		return domain.Recognition{}, fmt.Errorf("sample rate %d out of range [0, %d]", req.SampleRate, MaxSampleRate)
	}
	encoding, err := audioEncoding(req.Encoding)
	if err != nil {
		return domain.Recognition{}, err
	}

	lang := req.Language
	if lang == "" {
		lang = r.defaultLanguage
	}
	maxAlternatives := req.MaxAlternatives
	if maxAlternatives <= 0 {
		maxAlternatives = defaultMaxAlternatives
	}
	maxAlternatives = min(maxAlternatives, MaxAlternatives)

	r.logger.Debug("Sending recognition request",
		"language", lang,
		"encoding", encoding.String(),
		"max_alternatives", maxAlternatives,
		"audio_bytes", len(req.Audio),
	)

	resp, err := r.recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(req.SampleRate),
			LanguageCode:    lang,
			MaxAlternatives: int32(maxAlternatives),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio},
		},
	})
	if err != nil {
		return domain.Recognition{}, fmt.Errorf("failed to recognize speech: %w", err)
	}

	recognition := domain.Recognition{
		Language:     lang,
		Alternatives: alternatives(resp.GetResults()),
	}
	r.logger.Debug("Recognition completed",
		"alternatives", len(recognition.Alternatives),
		"top", recognition.Top(),
	)
	return recognition, nil
}

// Close releases the underlying client.
func (r *Recognizer) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// alternatives flattens Google results. A single result keeps all of its
// hypotheses; consecutive results are stitched into one transcript from
// their best hypotheses.
func alternatives(results []*speechpb.SpeechRecognitionResult) []domain.Alternative {
	var nonEmpty []*speechpb.SpeechRecognitionResult
	for _, res := range results {
		if len(res.GetAlternatives()) > 0 {
			nonEmpty = append(nonEmpty, res)
		}
	}

	switch len(nonEmpty) {
	case 0:
		return nil
	case 1:
		alts := make([]domain.Alternative, 0, len(nonEmpty[0].GetAlternatives()))
		for _, alt := range nonEmpty[0].GetAlternatives() {
			alts = append(alts, domain.Alternative{
				Transcript: alt.GetTranscript(),
				Confidence: float64(alt.GetConfidence()),
			})
		}
		return alts
	}

	parts := make([]string, 0, len(nonEmpty))
	var confidence float64
	for _, res := range nonEmpty {
		best := res.GetAlternatives()[0]
		parts = append(parts, strings.TrimSpace(best.GetTranscript()))
		confidence += float64(best.GetConfidence())
	}
	return []domain.Alternative{{
		Transcript: strings.Join(parts, " "),
		Confidence: confidence / float64(len(nonEmpty)),
	}}
}

// audioEncoding converts an encoding name to the Speech API enum. An empty
// name leaves detection to the service (WAV and FLAC headers).
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "":
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, nil
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
