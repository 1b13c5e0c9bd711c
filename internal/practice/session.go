// Package practice runs a pronunciation exercise: it plays the target phrase,
// collects one recognition pass and scores what was heard.
//
// Speech capabilities are optional collaborators. Their absence is reported
// as domain.ErrSynthesisUnavailable or domain.ErrRecognitionUnavailable so
// the caller can tell the learner; scoring itself never fails.
package practice

import (
	"context"
	"errors"
	"fmt"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/logger"
	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/core/feedback"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

const (
	defaultLanguage        = "en-US"
	defaultMaxAlternatives = 1
)

// Attempt is the outcome of one scored attempt.
type Attempt struct {
	Result      domain.Result
	Recognition domain.Recognition
	Feedback    feedback.Report
}

// Session wires the scorer to the speech collaborators.
type Session struct {
	scorer          ports.Scorer
	synthesizer     ports.Synthesizer
	recognizer      ports.Recognizer
	logger          ports.Logger
	metrics         ports.MetricsRecorder
	language        string
	maxAlternatives int
}

// Option configures a Session.
type Option func(*Session)

// WithSynthesizer sets the speech synthesis collaborator.
func WithSynthesizer(s ports.Synthesizer) Option {
	return func(sess *Session) {
		sess.synthesizer = s
	}
}

// WithRecognizer sets the speech recognition collaborator.
func WithRecognizer(r ports.Recognizer) Option {
	return func(sess *Session) {
		sess.recognizer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(sess *Session) {
		sess.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m ports.MetricsRecorder) Option {
	return func(sess *Session) {
		sess.metrics = m
	}
}

// WithLanguage sets the default BCP-47 language tag.
func WithLanguage(lang string) Option {
	return func(sess *Session) {
		sess.language = lang
	}
}

// WithMaxAlternatives sets the default number of recognition hypotheses.
func WithMaxAlternatives(n int) Option {
	return func(sess *Session) {
		sess.maxAlternatives = n
	}
}

// NewSession creates a practice session around scorer.
func NewSession(scorer ports.Scorer, opts ...Option) (*Session, error) {
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	sess := &Session{
		scorer:          scorer,
		logger:          logger.NewNopLogger(),
		metrics:         ports.NopMetrics{},
		language:        defaultLanguage,
		maxAlternatives: defaultMaxAlternatives,
	}
	for _, opt := range opts {
		opt(sess)
	}
	return sess, nil
}

// CanSpeak reports whether a synthesizer is configured.
func (s *Session) CanSpeak() bool {
	return s.synthesizer != nil
}

// CanRecognize reports whether a recognizer is configured.
func (s *Session) CanRecognize() bool {
	return s.recognizer != nil
}

// Demonstrate speaks the target phrase.
func (s *Session) Demonstrate(ctx context.Context, target, language string) error {
	if s.synthesizer == nil {
		return domain.ErrSynthesisUnavailable
	}
	if language == "" {
		language = s.language
	}
	if err := s.synthesizer.Speak(ctx, target, language); err != nil {
		s.logger.Warn("Speech synthesis failed", "target", target, "error", err)
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	return nil
}

// Attempt runs one recognition pass and scores its best transcript against
// target. A pass without any transcript is scored with an empty string.
func (s *Session) Attempt(ctx context.Context, target string, req domain.RecognitionRequest) (Attempt, error) {
	if s.recognizer == nil {
		s.metrics.RecordRecognition("unavailable")
		return Attempt{}, domain.ErrRecognitionUnavailable
	}
	if req.Language == "" {
		req.Language = s.language
	}
	if req.MaxAlternatives <= 0 {
		req.MaxAlternatives = s.maxAlternatives
	}

	recognition, err := s.recognizer.RecognizeOnce(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrRecognitionUnavailable) {
			s.metrics.RecordRecognition("unavailable")
			return Attempt{}, err
		}
		s.metrics.RecordRecognition("error")
		s.logger.Warn("Speech recognition failed", "target", target, "error", err)
		return Attempt{}, fmt.Errorf("speech recognition failed: %w", err)
	}

	heard := recognition.Top()
	if heard == "" {
		s.metrics.RecordRecognition("no_result")
	} else {
		s.metrics.RecordRecognition("ok")
	}

	attempt := s.AttemptText(ctx, target, heard)
	attempt.Recognition = recognition
	return attempt, nil
}

// AttemptText scores a transcript that the caller recognized itself.
func (s *Session) AttemptText(ctx context.Context, target, heard string) Attempt {
	result := s.scorer.Compute(ctx, target, heard)
	s.metrics.RecordScore(result.Score, result.Passed)
	s.logger.Info("Pronunciation attempt scored",
		"target", result.Target,
		"heard", result.Heard,
		"score", result.Score,
		"passed", result.Passed,
	)

	return Attempt{
		Result:   result,
		Feedback: feedback.Words(result.Target, result.Heard),
	}
}
