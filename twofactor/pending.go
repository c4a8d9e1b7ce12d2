package twofactor

import (
	"sync"
	"time"
)

const pendingTTL = 10 * time.Minute

// PendingStore holds setups that were initiated but not yet verified,
// keyed by user id with a TTL. The secret verified at enrollment must be
// the exact secret whose QR code the user scanned, so it is stored here
// between the two steps rather than regenerated.
type PendingStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	ttl     time.Duration
	now     func() time.Time
}

type pendingEntry struct {
	setup   *Setup
	expires time.Time
}

func NewPendingStore() *PendingStore {
	return &PendingStore{
		entries: make(map[string]pendingEntry),
		ttl:     pendingTTL,
		now:     time.Now,
	}
}

// Put stores a pending setup for the user, replacing any previous one.
func (p *PendingStore) Put(userID string, setup *Setup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sweepLocked()
	p.entries[userID] = pendingEntry{setup: setup, expires: p.now().Add(p.ttl)}
}

// Take retrieves and removes the user's pending setup. It returns nil if
// none exists or it has expired.
func (p *PendingStore) Take(userID string) *Setup {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[userID]
	if !ok {
		return nil
	}
	delete(p.entries, userID)
	if p.now().After(e.expires) {
		return nil
	}
	return e.setup
}

func (p *PendingStore) sweepLocked() {
	now := p.now()
	for id, e := range p.entries {
		if now.After(e.expires) {
			delete(p.entries, id)
		}
	}
}
