package normalize

import "testing"

func TestNormalize(t *testing.T) {
	n := New()
	cases := map[string]string{
		"":                "",
		"plain":           "plain",
		"a\r\nb\rc":       "a\nb\nc",
		"café":      "café",
		"Tiế'ng": "Tiế'ng",
	}
	for in, want := range cases {
		if got := n.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
