package normalizer

import (
	"testing"
)

var normalizeCases = []struct {
	name     string
	input    string
	expected string
}{
	{name: "Empty", input: "", expected: ""},
	{name: "Only whitespace", input: " \t\n ", expected: ""},
	{name: "Lower already", input: "environment", expected: "environment"},
	{name: "Mixed case", input: "Hello World", expected: "hello world"},
	{name: "Surrounding whitespace", input: "  hello world \n", expected: "hello world"},
	{name: "Internal whitespace kept", input: "Hello  World", expected: "hello  world"},
	{name: "Punctuation kept", input: "It's fine!", expected: "it's fine!"},
	{name: "Non-ASCII", input: " Crème Brûlée ", expected: "crème brûlée"},
	{name: "Non-breaking space trimmed", input: "\u00a0Cat\u00a0", expected: "cat"},
	{name: "Greek", input: "ΟΔΥΣΣΕΥΣ", expected: "οδυσσευσ"},
}

func TestNormalizers(t *testing.T) {
	factory := NewNormalizerFactory()
	normalizers := map[string]interface{ Normalize(string) string }{
		"default": factory.CreateNormalizer(DefaultNormalizerType),
		"fast":    factory.CreateNormalizer(FastNormalizerType),
	}

	for kind, n := range normalizers {
		for _, tc := range normalizeCases {
			t.Run(kind+"/"+tc.name, func(t *testing.T) {
				if got := n.Normalize(tc.input); got != tc.expected {
					t.Errorf("Normalize(%q) = %q, expected %q", tc.input, got, tc.expected)
				}
			})
		}
	}
}

func TestFastMatchesDefault(t *testing.T) {
	def := NewDefaultNormalizer()
	fast := NewFastNormalizer()

	inputs := []string{
		"", "A", " a ", "\tTAB\t", "MiXeD CaSe 123", "\v\fform feed\r\n",
		"ünïcödé", "already lower", "  trailing", "leading  ",
	}
	for _, in := range inputs {
		if d, f := def.Normalize(in), fast.Normalize(in); d != f {
			t.Errorf("Normalize(%q): default=%q fast=%q", in, d, f)
		}
	}
}
