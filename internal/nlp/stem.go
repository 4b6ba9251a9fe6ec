package nlp

import "strings"

// stemLen is the prefix length used for stem comparison.  Four
// characters keeps "μπριζολα"/"μπριζολες" together without collapsing
// unrelated short words.
const stemLen = 4

// pluralSuffixes are trimmed before prefix comparison so common Greek
// plural forms meet their singular menu entries ("παιδακια" vs
// "παιδακι").  Longest suffix wins.
var pluralSuffixes = []string{"ια", "εσ", "ες", "οι", "ων", "α"}

// Stem reduces one normalized word for fuzzy comparison: strip a
// plural suffix, then truncate to the stem prefix length.
func Stem(word string) string {
	w := word
	for _, suf := range pluralSuffixes {
		if len(w) > len(suf)+2 && strings.HasSuffix(w, suf) {
			w = strings.TrimSuffix(w, suf)
			break
		}
	}
	if r := []rune(w); len(r) > stemLen {
		w = string(r[:stemLen])
	}
	return w
}

// StemWords stems every word of an already normalized phrase.
func StemWords(norm string) []string {
	fields := strings.Fields(norm)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = Stem(f)
	}
	return out
}
