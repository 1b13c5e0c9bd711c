package normalizer

import (
	"github.com/baditaflorin/go_pronunciation/internal/pool"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// FastNormalizer produces the same output as DefaultNormalizer but handles
// ASCII input with a lookup table and pooled buffers. Anything non-ASCII is
// delegated to the default implementation.
type FastNormalizer struct {
	// Pre-computed lower-case mapping for ASCII characters (0-127)
	lower [128]byte
	space [128]bool

	bytePool *pool.BufferPool
	fallback ports.Normalizer
}

// NewFastNormalizer creates a new fast normalizer with precomputed tables
func NewFastNormalizer() ports.Normalizer {
	n := &FastNormalizer{
		bytePool: pool.NewBufferPool(256),
		fallback: NewDefaultNormalizer(),
	}

	for i := 0; i < 128; i++ {
		b := byte(i)
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		n.lower[i] = b
	}
	// The ASCII subset of unicode.IsSpace.
	for _, b := range []byte{'\t', '\n', '\v', '\f', '\r', ' '} {
		n.space[b] = true
	}

	return n
}

// Normalize trims surrounding whitespace and lower-cases the text.
func (n *FastNormalizer) Normalize(text string) string {
	if len(text) == 0 {
		return ""
	}

	needsLower := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 128 {
			return n.fallback.Normalize(text)
		}
		if n.lower[c] != c {
			needsLower = true
		}
	}

	start, end := 0, len(text)
	for start < end && n.space[text[start]] {
		start++
	}
	for end > start && n.space[text[end-1]] {
		end--
	}
	trimmed := text[start:end]
	if !needsLower {
		return trimmed
	}

	buffer := n.bytePool.Get()
	defer n.bytePool.Put(buffer)

	for i := 0; i < len(trimmed); i++ {
		*buffer = append(*buffer, n.lower[trimmed[i]])
	}
	return string(*buffer)
}
