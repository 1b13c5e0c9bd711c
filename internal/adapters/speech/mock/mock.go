// Package mock provides test doubles for the speech ports.
package mock

import (
	"context"
	"sync"

	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// SpeakCall records a single invocation of Synthesizer.Speak or
// AudioSynthesizer.Synthesize.
type SpeakCall struct {
	Text     string
	Language string
}

// Synthesizer is a mock implementation of ports.Synthesizer.
type Synthesizer struct {
	mu    sync.Mutex
	Err   error
	calls []SpeakCall
}

var _ ports.Synthesizer = (*Synthesizer)(nil)

// Speak records the call and returns Err.
func (s *Synthesizer) Speak(ctx context.Context, text, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, SpeakCall{Text: text, Language: language})
	return s.Err
}

// Calls returns a copy of the recorded calls.
func (s *Synthesizer) Calls() []SpeakCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SpeakCall(nil), s.calls...)
}

// AudioSynthesizer is a mock implementation of ports.AudioSynthesizer.
type AudioSynthesizer struct {
	mu    sync.Mutex
	Audio []byte
	Ext   string
	Err   error
	calls []SpeakCall
}

var _ ports.AudioSynthesizer = (*AudioSynthesizer)(nil)

// Synthesize records the call and returns Audio, Err.
func (s *AudioSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, SpeakCall{Text: text, Language: language})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Audio, nil
}

// Format returns Ext.
func (s *AudioSynthesizer) Format() string {
	return s.Ext
}

// Calls returns a copy of the recorded calls.
func (s *AudioSynthesizer) Calls() []SpeakCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SpeakCall(nil), s.calls...)
}

// Recognizer is a mock implementation of ports.Recognizer. It returns
// Recognition and Err for every call.
type Recognizer struct {
	mu          sync.Mutex
	Recognition domain.Recognition
	Err         error
	requests    []domain.RecognitionRequest
}

var _ ports.Recognizer = (*Recognizer)(nil)

// RecognizeOnce records the request and returns Recognition, Err.
func (r *Recognizer) RecognizeOnce(ctx context.Context, req domain.RecognitionRequest) (domain.Recognition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.Err != nil {
		return domain.Recognition{}, r.Err
	}
	return r.Recognition, nil
}

// Requests returns a copy of the recorded requests.
func (r *Recognizer) Requests() []domain.RecognitionRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RecognitionRequest(nil), r.requests...)
}
