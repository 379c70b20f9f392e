package rules

import "sync"

// Index is the in-memory source of truth for reaction rules, keyed by the
// carrier message ID.
type Index struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

func NewIndex() *Index {
	return &Index{
		rules: make(map[string]*Rule),
	}
}

// Lookup returns the rule for the given carrier message, if registered.
func (idx *Index) Lookup(messageID string) (*Rule, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	rule, ok := idx.rules[messageID]
	return rule, ok
}

// Insert registers a rule, replacing any previous rule for the same message.
func (idx *Index) Insert(rule *Rule) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rules[rule.MessageID] = rule
}

// Remove unregisters the rule for the given carrier message. Removing an
// unknown message is a no-op.
func (idx *Index) Remove(messageID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.rules, messageID)
}

// Len returns the number of registered rules.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.rules)
}
