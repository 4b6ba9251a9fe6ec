package nlp

import (
	"strings"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// Matching tunables.  Exercised by table-driven tests; adjust there
// first when changing them.
const (
	// minPrefixLen is the shortest common stem prefix that still
	// counts a word as matched.
	minPrefixLen = 3
	// minMatchedWords is the similarity threshold below which the
	// matcher refuses to guess and returns unclassified.
	minMatchedWords = 1
)

// MatchResult is the outcome of classifying one remainder text.
type MatchResult struct {
	// Item is the winning menu item; nil means unclassified.
	Item *model.MenuItem
	// Hidden flags that the best match exists but is hidden; callers
	// must reject the line instead of silently substituting.
	Hidden bool
	// ByCorrection is true when a correction rule decided the match.
	ByCorrection bool
}

// entry is one precomputed matching candidate.
type entry struct {
	item     *model.MenuItem
	normName string
	stems    []string
}

// Matcher maps normalized item phrases to entries of one menu version.
// It holds no mutable state: it is a pure function of the text, the
// version it was built from and the rule table passed per call, so a
// new Matcher is built whenever a menu version is uploaded.
type Matcher struct {
	entries []entry
	byID    map[string]*model.MenuItem
}

// NewMatcher precomputes normalized names and word stems for every
// item of the active menu version.  Hidden items participate in
// matching so that they can be surfaced as a distinct condition
// rather than silently losing to a worse candidate.
func NewMatcher(items []model.MenuItem) *Matcher {
	m := &Matcher{byID: make(map[string]*model.MenuItem, len(items))}
	for i := range items {
		it := &items[i]
		norm, _ := Normalize(it.Name)
		if norm == "" {
			continue
		}
		m.entries = append(m.entries, entry{item: it, normName: norm, stems: StemWords(norm)})
		m.byID[it.ID] = it
	}
	return m
}

// ItemByID returns the catalog item for an external id.
func (m *Matcher) ItemByID(id string) (*model.MenuItem, bool) {
	it, ok := m.byID[id]
	return it, ok
}

// Match resolves remainder text (quantity and unit already stripped)
// to a menu item.  Correction rules always win; otherwise the entry
// with the most stem-matched words and the longest common prefixes is
// chosen, with an exact full-name match outranking any partial score.
// Below the similarity threshold the result is unclassified rather
// than a guess.
func (m *Matcher) Match(remainder string, rules RuleLookup) MatchResult {
	norm, _ := Normalize(remainder)
	if norm == "" {
		return MatchResult{}
	}

	if rules != nil {
		if id, ok := rules.Lookup(norm); ok {
			if it, found := m.byID[id]; found {
				return MatchResult{Item: it, Hidden: it.Hidden, ByCorrection: true}
			}
			// rule points at an item absent from this version, fall
			// through to stem matching
		}
	}

	queryStems := StemWords(norm)
	var (
		best      *entry
		bestScore matchScore
	)
	for i := range m.entries {
		e := &m.entries[i]
		s := score(norm, queryStems, e)
		if best == nil || s.better(bestScore) {
			best = e
			bestScore = s
		}
	}
	if best == nil || bestScore.matchedWords < minMatchedWords {
		return MatchResult{}
	}
	return MatchResult{Item: best.item, Hidden: best.item.Hidden}
}

// matchScore orders candidates: exact name match first, then most
// matched words, then longest accumulated common prefix.
type matchScore struct {
	exact        bool
	matchedWords int
	prefixTotal  int
}

func (s matchScore) better(o matchScore) bool {
	if s.exact != o.exact {
		return s.exact
	}
	if s.matchedWords != o.matchedWords {
		return s.matchedWords > o.matchedWords
	}
	return s.prefixTotal > o.prefixTotal
}

func score(norm string, queryStems []string, e *entry) matchScore {
	if norm == e.normName {
		return matchScore{exact: true, matchedWords: len(queryStems)}
	}
	var sc matchScore
	for _, qs := range queryStems {
		bestPrefix, wholeStem := 0, false
		for _, es := range e.stems {
			p := commonPrefixLen(qs, es)
			if p > bestPrefix {
				bestPrefix = p
			}
			if p > 0 && qs == es {
				wholeStem = true
			}
		}
		// a word counts when the common prefix is long enough, or a
		// short word matched an entry stem in full ("ουζο")
		if bestPrefix >= minPrefixLen || wholeStem {
			sc.matchedWords++
			sc.prefixTotal += bestPrefix
		}
	}
	return sc
}

// commonPrefixLen counts the shared leading runes of two stems.
func commonPrefixLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[n] == rb[n] {
		n++
	}
	return n
}

// NormalizeKey produces the correction-rule key for a raw line: the
// same normalization the matcher applies, with the quantity and unit
// stripped so "2 σουβλ" and "σουβλ" share one rule.
func NormalizeKey(rawText string) string {
	norm, _ := Normalize(rawText)
	pq := ParseQuantity(norm)
	return strings.TrimSpace(pq.Remainder)
}
