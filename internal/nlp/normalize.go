// Package nlp implements the order interpretation pipeline: text
// normalization, quantity/unit parsing and menu matching for free-text
// Greek orders.
package nlp

import "strings"

// accentMap folds accented Greek and common Latin vowels to their bare
// forms.  Kept as an explicit table so normalization has no dependency
// on full unicode decomposition; the order text domain is Greek menu
// lines, not arbitrary prose.
var accentMap = map[rune]rune{
	'ά': 'α', 'έ': 'ε', 'ή': 'η', 'ί': 'ι', 'ό': 'ο', 'ύ': 'υ', 'ώ': 'ω',
	'ϊ': 'ι', 'ϋ': 'υ', 'ΐ': 'ι', 'ΰ': 'υ',
	'Ά': 'Α', 'Έ': 'Ε', 'Ή': 'Η', 'Ί': 'Ι', 'Ό': 'Ο', 'Ύ': 'Υ', 'Ώ': 'Ω',
	'Ϊ': 'Ι', 'Ϋ': 'Υ',
	'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
}

// StripAccents removes diacritical marks from Greek and Latin letters.
func StripAccents(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if base, ok := accentMap[r]; ok {
			r = base
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// isKeepable reports whether a rune survives normalization: letters,
// digits and spaces stay, punctuation is dropped.
func isKeepable(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == ' ':
		return true
	case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		return true
	case r >= 'Α' && r <= 'ω' || r == 'ς':
		return true
	default:
		return false
	}
}

// Normalize canonicalizes one order line for matching:
//
//  1. parenthetical content "(...)" is cut into a separate note,
//  2. the text is lowercased,
//  3. accents are stripped,
//  4. the Greek final sigma is folded to the standard form,
//  5. punctuation is dropped and whitespace collapsed.
//
// It never fails; empty input yields an empty normalized line, which
// callers treat as "no item".  Normalize is idempotent.
func Normalize(line string) (norm string, note string) {
	text, note := splitNote(line)

	text = strings.ToLower(text)
	text = StripAccents(text)
	text = strings.ReplaceAll(text, "ς", "σ")

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(' ')
		case isKeepable(r):
			b.WriteRune(r)
		case r == '.' || r == ',':
			// keep a decimal separator only inside a number ("2,5" -> "2.5")
			if i > 0 && i < len(runes)-1 && isDigit(runes[i-1]) && isDigit(runes[i+1]) {
				b.WriteRune('.')
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " "), note
}

// splitNote removes every "(...)" group from the line and returns the
// concatenated inner text as the note.  An unclosed parenthesis eats
// the rest of the line; the note itself is trimmed but otherwise kept
// verbatim for the kitchen to read.
func splitNote(line string) (text string, note string) {
	var kept, notes strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == '(':
			if depth > 0 {
				notes.WriteRune(r)
			}
			depth++
		case r == ')' && depth > 0:
			depth--
			if depth > 0 {
				notes.WriteRune(r)
			} else {
				notes.WriteRune(' ')
			}
		case depth > 0:
			notes.WriteRune(r)
		default:
			kept.WriteRune(r)
		}
	}
	return kept.String(), strings.Join(strings.Fields(notes.String()), " ")
}

// SplitLines breaks a multi-line order text into trimmed non-empty
// lines, one dish per line.
func SplitLines(orderText string) []string {
	var out []string
	for _, ln := range strings.Split(orderText, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			out = append(out, t)
		}
	}
	return out
}
