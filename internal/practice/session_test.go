package practice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/logger"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/normalizer"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/speech/mock"
	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/core/editdistance"
	"github.com/baditaflorin/go_pronunciation/internal/core/pronunciation"
)

type recordingMetrics struct {
	mu           sync.Mutex
	scores       []int
	recognitions []string
}

func (m *recordingMetrics) RecordScore(score int, passed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, score)
}

func (m *recordingMetrics) RecordRecognition(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recognitions = append(m.recognitions, status)
}

func newScorer(t *testing.T) *pronunciation.Calculator {
	t.Helper()
	calc, err := pronunciation.NewCalculator(pronunciation.DefaultConfig(), logger.NewNopLogger(),
		normalizer.NewDefaultNormalizer(), editdistance.NewCalculator(), nil)
	require.NoError(t, err)
	return calc
}

func TestAttemptScoresTopAlternative(t *testing.T) {
	rec := &mock.Recognizer{Recognition: domain.Recognition{
		Alternatives: []domain.Alternative{
			{Transcript: "Enviroment", Confidence: 0.8},
			{Transcript: "environment", Confidence: 0.4},
		},
	}}
	metrics := &recordingMetrics{}
	sess, err := NewSession(newScorer(t), WithRecognizer(rec), WithMetrics(metrics), WithMaxAlternatives(3))
	require.NoError(t, err)

	attempt, err := sess.Attempt(context.Background(), "environment", domain.RecognitionRequest{Audio: []byte{1}})
	require.NoError(t, err)

	assert.Equal(t, 91, attempt.Result.Score)
	assert.Equal(t, "enviroment", attempt.Result.Heard)
	assert.Len(t, attempt.Recognition.Alternatives, 2)

	reqs := rec.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "en-US", reqs[0].Language)
	assert.Equal(t, 3, reqs[0].MaxAlternatives)

	assert.Equal(t, []string{"ok"}, metrics.recognitions)
	assert.Equal(t, []int{91}, metrics.scores)
}

func TestAttemptWithoutTranscriptScoresEmpty(t *testing.T) {
	rec := &mock.Recognizer{}
	metrics := &recordingMetrics{}
	sess, err := NewSession(newScorer(t), WithRecognizer(rec), WithMetrics(metrics))
	require.NoError(t, err)

	attempt, err := sess.Attempt(context.Background(), "cat", domain.RecognitionRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, attempt.Result.Score)
	assert.Equal(t, "", attempt.Result.Heard)
	assert.Equal(t, []string{"no_result"}, metrics.recognitions)
	require.Len(t, attempt.Feedback.Issues, 1)
	assert.Equal(t, "missed", attempt.Feedback.Issues[0].Kind)
}

func TestAttemptWithoutRecognizer(t *testing.T) {
	sess, err := NewSession(newScorer(t))
	require.NoError(t, err)

	assert.False(t, sess.CanRecognize())
	_, err = sess.Attempt(context.Background(), "cat", domain.RecognitionRequest{})
	assert.ErrorIs(t, err, domain.ErrRecognitionUnavailable)
}

func TestAttemptRecognizerReportsNoCapability(t *testing.T) {
	rec := &mock.Recognizer{Err: domain.ErrRecognitionUnavailable}
	sess, err := NewSession(newScorer(t), WithRecognizer(rec))
	require.NoError(t, err)

	_, err = sess.Attempt(context.Background(), "cat", domain.RecognitionRequest{})
	assert.ErrorIs(t, err, domain.ErrRecognitionUnavailable)
}

func TestAttemptRecognizerFailure(t *testing.T) {
	backendErr := errors.New("network down")
	rec := &mock.Recognizer{Err: backendErr}
	metrics := &recordingMetrics{}
	sess, err := NewSession(newScorer(t), WithRecognizer(rec), WithMetrics(metrics))
	require.NoError(t, err)

	_, err = sess.Attempt(context.Background(), "cat", domain.RecognitionRequest{})
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, domain.ErrRecognitionUnavailable)
	assert.Equal(t, []string{"error"}, metrics.recognitions)
	assert.Empty(t, metrics.scores)
	assert.Len(t, rec.Requests(), 1, "recognition must not be retried")
}

func TestDemonstrate(t *testing.T) {
	synth := &mock.Synthesizer{}
	sess, err := NewSession(newScorer(t), WithSynthesizer(synth), WithLanguage("en-GB"))
	require.NoError(t, err)

	require.NoError(t, sess.Demonstrate(context.Background(), "environment", ""))
	require.NoError(t, sess.Demonstrate(context.Background(), "bonjour", "fr-FR"))

	assert.Equal(t, []mock.SpeakCall{
		{Text: "environment", Language: "en-GB"},
		{Text: "bonjour", Language: "fr-FR"},
	}, synth.Calls())
}

func TestDemonstrateUnavailable(t *testing.T) {
	sess, err := NewSession(newScorer(t))
	require.NoError(t, err)

	assert.False(t, sess.CanSpeak())
	assert.ErrorIs(t, sess.Demonstrate(context.Background(), "cat", "en"), domain.ErrSynthesisUnavailable)
}

func TestDemonstrateFailure(t *testing.T) {
	synthErr := errors.New("audio device busy")
	sess, err := NewSession(newScorer(t), WithSynthesizer(&mock.Synthesizer{Err: synthErr}))
	require.NoError(t, err)

	assert.ErrorIs(t, sess.Demonstrate(context.Background(), "cat", "en"), synthErr)
}

func TestAttemptText(t *testing.T) {
	sess, err := NewSession(newScorer(t))
	require.NoError(t, err)

	attempt := sess.AttemptText(context.Background(), "Hello World", " hello world ")
	assert.Equal(t, 100, attempt.Result.Score)
	assert.Equal(t, 2, attempt.Feedback.Matched)
	assert.Empty(t, attempt.Feedback.Issues)
}

func TestNewSessionRequiresScorer(t *testing.T) {
	_, err := NewSession(nil)
	assert.Error(t, err)
}
