package normalizer

import (
	"strings"

	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// DefaultNormalizer implements the reference normalization: surrounding
// whitespace is trimmed and the text is lower-cased. Internal whitespace is
// left untouched.
type DefaultNormalizer struct{}

// NewDefaultNormalizer creates a new default normalizer.
func NewDefaultNormalizer() ports.Normalizer {
	return &DefaultNormalizer{}
}

// Normalize trims leading and trailing whitespace and converts to lower case.
func (n *DefaultNormalizer) Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
