package store

import (
	"context"
	"sync"
	"time"

	"github.com/blockboard/povauth/core"
	"github.com/blockboard/povauth/ports"
)

// MemoryStore is an in-memory implementation of the ChallengeStore interface
type MemoryStore struct {
	challenges map[string]*core.Challenge
	evictAfter time.Duration
	mu         sync.Mutex
}

// NewMemoryStore creates a new in-memory store. evictAfter bounds how long
// an unconsumed challenge can linger; it must be at least the challenge TTL
// so eviction never races the caller's expiry check. Zero disables eviction.
func NewMemoryStore(evictAfter time.Duration) ports.ChallengeStore {
	return &MemoryStore{
		challenges: make(map[string]*core.Challenge),
		evictAfter: evictAfter,
	}
}

// Put records a challenge, replacing any pending one for the same address.
func (s *MemoryStore) Put(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	s.challenges[challenge.Address] = challenge
	s.mu.Unlock()

	if s.evictAfter <= 0 {
		return nil
	}

	// Start a cleanup goroutine so challenges that are never verified do not
	// accumulate forever.
	id := challenge.ID
	address := challenge.Address
	go func() {
		time.Sleep(s.evictAfter)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if the entry wasn't replaced in the meantime.
		if pending, exists := s.challenges[address]; exists && pending.ID == id {
			delete(s.challenges, address)
		}
	}()

	return nil
}

// Take removes and returns the pending challenge for an address.
func (s *MemoryStore) Take(ctx context.Context, address string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.challenges[address]
	if !exists {
		return nil, core.ErrNoChallenge
	}
	delete(s.challenges, address)

	return challenge, nil
}
