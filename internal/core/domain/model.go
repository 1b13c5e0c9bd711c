package domain

import "errors"

// ResultName identifies the pronunciation metric in results and logs.
const ResultName = "pronunciation_score"

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Result holds the outcome of a pronunciation scoring call.
type Result struct {
	Name string
	// Score is the intelligibility score in [0, 100].
	Score int
	// Passed reports whether Score meets Threshold.
	Passed    bool
	Threshold int
	// Target and Heard are the normalized phrases that were compared.
	Target string
	Heard  string
	// Distance is the edit distance between Target and Heard.
	Distance int
	// Denominator is max(len(Target), len(Heard), 1) in characters.
	Denominator int
	// NormalizedDistance is Distance / Denominator.
	NormalizedDistance float64
	Details            map[string]interface{}
}

// Alternative is a single transcript hypothesis returned by a recognizer.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Recognition is the outcome of one recognition pass. Alternatives are
// ordered best first and may be empty.
type Recognition struct {
	Alternatives []Alternative
	Language     string
}

// Top returns the best transcript, or an empty string when the pass produced
// nothing.
func (r Recognition) Top() string {
	if len(r.Alternatives) == 0 {
		return ""
	}
	return r.Alternatives[0].Transcript
}

// RecognitionRequest describes a single recognition pass.
type RecognitionRequest struct {
	// Language is a BCP-47 tag such as "en-US".
	Language string
	// MaxAlternatives limits the number of transcript hypotheses.
	MaxAlternatives int
	// Audio carries the recorded utterance for server-side recognizers.
	Audio []byte
	// SampleRate of Audio in Hz; zero lets the recognizer detect it.
	SampleRate int
	// Encoding of Audio, e.g. "LINEAR16", "OGG_OPUS", "WEBM_OPUS".
	Encoding string
}

var (
	// ErrRecognitionUnavailable is returned when speech recognition is not
	// available on the current platform or was not configured.
	ErrRecognitionUnavailable = errors.New("speech recognition is not available")
	// ErrSynthesisUnavailable is returned when speech synthesis is not
	// available on the current platform or was not configured.
	ErrSynthesisUnavailable = errors.New("speech synthesis is not available")
)
