// Package phonetic implements ports.PhoneticHinter with Double Metaphone
// codes. A hint is reported next to a score to tell a learner that the
// recognizer probably heard a homophone; it never changes the score.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// Hinter compares phrases word by word using Double Metaphone codes.
// It is read-only after construction and safe for concurrent use.
type Hinter struct{}

// New returns a Double Metaphone hinter.
func New() ports.PhoneticHinter {
	return Hinter{}
}

// SoundsAlike reports whether both phrases have the same number of words and
// every word pair shares a primary or secondary Double Metaphone code.
// Words that produce no code (e.g. digits) must match literally.
func (Hinter) SoundsAlike(target, heard string) bool {
	targetWords := strings.Fields(target)
	heardWords := strings.Fields(heard)
	if len(targetWords) != len(heardWords) {
		return false
	}

	for i := range targetWords {
		if !wordsAlike(targetWords[i], heardWords[i]) {
			return false
		}
	}
	return true
}

func wordsAlike(a, b string) bool {
	if a == b {
		return true
	}
	ap, as := matchr.DoubleMetaphone(a)
	bp, bs := matchr.DoubleMetaphone(b)
	if ap == "" && as == "" || bp == "" && bs == "" {
		return false
	}
	for _, x := range []string{ap, as} {
		if x == "" {
			continue
		}
		if x == bp || x == bs {
			return true
		}
	}
	return false
}
