// Package store holds user accounts in process memory. Accounts are seeded
// once at startup, mutated only through Update, and discarded when the
// process exits.
package store

import (
	"sync"

	"cryptofolio/internal/domain"
)

// DefaultUserID is the seed account used when a request names no user.
const DefaultUserID = "demo"

// MemoryStore is the in-memory user store. It is safe for concurrent use:
// reads hand out copies and every mutation of a given account runs under
// that account's lock, so concurrent trades cannot interleave their
// read-modify-write sequences.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*accountEntry
}

type accountEntry struct {
	mu      sync.Mutex
	account domain.Account
}

// NewMemoryStore creates a store holding copies of the given seed accounts.
func NewMemoryStore(seed ...domain.Account) *MemoryStore {
	s := &MemoryStore{accounts: make(map[string]*accountEntry, len(seed))}
	for _, a := range seed {
		s.accounts[a.UserID] = &accountEntry{account: a.Clone()}
	}
	return s
}

// SeedAccounts returns the demo dataset loaded at process start.
func SeedAccounts() []domain.Account {
	return []domain.Account{
		{
			UserID:     DefaultUserID,
			Name:       "Demo User",
			BalanceUSD: 10000,
			Holdings: map[string]float64{
				"bitcoin":  0.1,
				"ethereum": 1.5,
			},
		},
	}
}

// Get returns a copy of the named account, or domain.ErrAccountNotFound.
func (s *MemoryStore) Get(userID string) (domain.Account, error) {
	entry, ok := s.lookup(userID)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.account.Clone(), nil
}

// Update applies fn to the named account under its lock. fn receives the
// live account and may mutate it; an error from fn is returned as-is, so fn
// must finish all validation before mutating anything.
func (s *MemoryStore) Update(userID string, fn func(*domain.Account) error) error {
	entry, ok := s.lookup(userID)
	if !ok {
		return domain.ErrAccountNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(&entry.account)
}

func (s *MemoryStore) lookup(userID string) (*accountEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.accounts[userID]
	return entry, ok
}
