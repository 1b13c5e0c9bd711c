package ports

import (
	"context"

	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
)

// Synthesizer speaks a phrase aloud. Nothing it produces is consumed by the
// scorer.
type Synthesizer interface {
	Speak(ctx context.Context, text, language string) error
}

// AudioSynthesizer renders a phrase into encoded audio bytes.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	// Format is the file extension of the produced audio, e.g. "mp3".
	Format() string
}

// Recognizer runs a single, non-restartable recognition pass.
//
// Implementations return domain.ErrRecognitionUnavailable when the
// capability is missing on the current platform. A pass that produced no
// transcript is not an error: it resolves to a Recognition with zero
// alternatives.
type Recognizer interface {
	RecognizeOnce(ctx context.Context, req domain.RecognitionRequest) (domain.Recognition, error)
}
