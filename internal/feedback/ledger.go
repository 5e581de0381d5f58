// Package feedback records per-item user decisions on optimization
// recommendations and reports completion statistics.
package feedback

import (
	"fmt"
	"sync"
	"time"
)

// Decision is a user's verdict on one recommendation.
type Decision string

// Decision values accepted by the ledger.
const (
	DecisionAccept Decision = "accept"
	DecisionModify Decision = "further_modify"
	DecisionReject Decision = "reject"
)

// Entry is one recorded decision. Entries are immutable; a later
// submission for the same item id replaces the prior entry wholesale.
type Entry struct {
	ItemID       string    `json:"item_id"`
	Decision     Decision  `json:"decision"`
	Notes        string    `json:"notes,omitempty"`
	ModifiedText string    `json:"modified_text,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Status summarizes ledger completeness against the currently loaded
// instruction set.
type Status struct {
	Total           int     `json:"total"`
	Received        int     `json:"received"`
	Pending         int     `json:"pending"`
	PercentComplete float64 `json:"percent_complete"`
}

// Ledger tracks decisions for one workflow instance. It is scoped per
// workflow, never shared across concurrent users.
type Ledger struct {
	mu      sync.Mutex
	items   []string // instruction ids currently loaded, in source order
	entries map[string]Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]Entry)}
}

// LoadItems replaces the set of instruction ids the ledger tracks.
// Previously recorded entries are kept but entries for ids no longer
// loaded stop counting toward completion.
func (l *Ledger) LoadItems(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]string(nil), ids...)
}

// Record stores a decision for an item. Last write wins.
func (l *Ledger) Record(itemID string, decision Decision, notes, modifiedText string) (Entry, error) {
	switch decision {
	case DecisionAccept, DecisionModify, DecisionReject:
	default:
		return Entry{}, fmt.Errorf("invalid decision %q", decision)
	}
	if itemID == "" {
		return Entry{}, fmt.Errorf("item id is required")
	}

	entry := Entry{
		ItemID:       itemID,
		Decision:     decision,
		Notes:        notes,
		ModifiedText: modifiedText,
		Timestamp:    time.Now().UTC(),
	}

	l.mu.Lock()
	l.entries[itemID] = entry
	l.mu.Unlock()

	return entry, nil
}

// Get returns the recorded entry for an item, if any.
func (l *Ledger) Get(itemID string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[itemID]
	return e, ok
}

// Accepted returns the ids of loaded items with an accept decision,
// in loaded (source) order.
func (l *Ledger) Accepted() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var accepted []string
	for _, id := range l.items {
		if e, ok := l.entries[id]; ok && e.Decision == DecisionAccept {
			accepted = append(accepted, id)
		}
	}
	return accepted
}

// Status computes completion statistics freshly on every call. Only
// entries matching a currently loaded item count as received; a zero
// total reports 0% rather than dividing by zero.
func (l *Ledger) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := len(l.items)
	received := 0
	for _, id := range l.items {
		if _, ok := l.entries[id]; ok {
			received++
		}
	}

	s := Status{
		Total:    total,
		Received: received,
		Pending:  total - received,
	}
	if total > 0 {
		s.PercentComplete = float64(received) / float64(total) * 100
	}
	return s
}
