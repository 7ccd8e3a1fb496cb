package service

import "sync"

// PoolLocks hands out one mutex per vacancy pool so counter mutations on the
// same pool are serialized while unrelated pools stay independent. The
// allocation engine holds a pool's lock for a whole pass; interactive status
// transitions take it per operation.
type PoolLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPoolLocks constructs an empty registry.
func NewPoolLocks() *PoolLocks {
	return &PoolLocks{locks: make(map[string]*sync.Mutex)}
}

// Get returns the mutex guarding the pool with the given id.
func (p *PoolLocks) Get(poolID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.locks[poolID]; ok {
		return l
	}
	l := &sync.Mutex{}
	p.locks[poolID] = l
	return l
}
