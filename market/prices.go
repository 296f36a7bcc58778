package market

import (
	"fmt"
	"sort"
	"sync"
)

// PriceStore caches the latest PriceUpdate per market.
type PriceStore struct {
	mu     sync.RWMutex
	prices map[string]PriceUpdate
}

func NewPriceStore() *PriceStore {
	return &PriceStore{prices: make(map[string]PriceUpdate)}
}

func (ps *PriceStore) Set(u PriceUpdate) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.prices[u.MarketID] = u
}

// Get returns the latest update for marketID, or an error if no price
// has been seen for it yet.
func (ps *PriceStore) Get(marketID string) (PriceUpdate, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	u, ok := ps.prices[marketID]
	if !ok {
		return PriceUpdate{}, fmt.Errorf("no price for market %q", marketID)
	}
	return u, nil
}

// Best returns the best-bid price for one side of a market.
func (ps *PriceStore) Best(marketID string, s Side) (float64, error) {
	u, err := ps.Get(marketID)
	if err != nil {
		return 0, err
	}
	return u.Best(s), nil
}

// Markets returns the tracked market IDs in sorted order.
func (ps *PriceStore) Markets() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	ids := make([]string, 0, len(ps.prices))
	for id := range ps.prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset drops all cached prices.
func (ps *PriceStore) Reset() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.prices = make(map[string]PriceUpdate)
}
