package ports

// Normalizer defines the interface for text normalization applied to both
// the target phrase and the recognized transcript before comparison.
type Normalizer interface {
	Normalize(text string) string
}
