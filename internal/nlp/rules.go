package nlp

import (
	"sync"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// RuleLookup resolves a normalized text key to a corrected menu item
// id.  The matcher consults it before any stem matching runs.
type RuleLookup interface {
	Lookup(key string) (itemID string, ok bool)
}

// RuleTable is the in-memory view of the correction rules, warm-loaded
// from the repository at startup and written through on every capture.
// Last write wins for a given key.
type RuleTable struct {
	mu    sync.RWMutex
	rules map[string]model.CorrectionRule
}

// NewRuleTable returns an empty rule table.
func NewRuleTable() *RuleTable {
	return &RuleTable{rules: make(map[string]model.CorrectionRule)}
}

// Load replaces the table contents with the given rules.  Rules with
// the same key keep the newest one.
func (t *RuleTable) Load(rules []model.CorrectionRule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = make(map[string]model.CorrectionRule, len(rules))
	for _, r := range rules {
		if prev, ok := t.rules[r.Key]; ok && prev.CreatedAt.After(r.CreatedAt) {
			continue
		}
		t.rules[r.Key] = r
	}
}

// Upsert stores a correction, overwriting any older rule for the key.
func (t *RuleTable) Upsert(rule model.CorrectionRule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules[rule.Key] = rule
}

// Lookup implements RuleLookup.
func (t *RuleTable) Lookup(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rules[key]
	if !ok {
		return "", false
	}
	return r.CorrectedItemID, true
}

// Len reports the number of stored rules.
func (t *RuleTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}
