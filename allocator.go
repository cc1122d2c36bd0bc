/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// Pool is a shuffled queue of indices into some catalog. Items are popped
// until the pool runs dry, at which point it is refilled with a freshly
// seeded shuffle, so nothing repeats within a room and category until the
// whole catalog has been seen once.
type Pool struct {
	key        string
	remaining  []int
	size       int
	lastRefill time.Time
}

// Allocator owns the pools for a single room. It is only ever touched from
// that room's hub goroutine, so it needs no locking.
type Allocator struct {
	roomCode string
	pools    map[string]*Pool
}

func newAllocator(roomCode string) *Allocator {
	return &Allocator{
		roomCode: roomCode,
		pools:    make(map[string]*Pool),
	}
}

// splitmix32 is the permutation step of the pool RNG. Fast and well mixed,
// not cryptographically secure; uniqueness is the only contract here.
func splitmix32(state *uint32) uint32 {
	*state += 0x9e3779b9
	z := *state
	z = (z ^ (z >> 16)) * 0x21f0aaad
	z = (z ^ (z >> 15)) * 0x735a2d97
	return z ^ (z >> 15)
}

// poolSeed mixes the room code, pool key, wall clock, and a random
// component. Determinism from the seed is not required for correctness,
// but keeping the seed explicit makes the shuffle swappable.
func (a *Allocator) poolSeed(poolKey string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(a.roomCode))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(poolKey))

	return h.Sum32() ^ uint32(time.Now().UnixNano()) ^ rand.Uint32()
}

func (a *Allocator) refill(poolKey string, size int) *Pool {
	p := &Pool{
		key:        poolKey,
		remaining:  make([]int, size),
		size:       size,
		lastRefill: time.Now(),
	}
	for i := range p.remaining {
		p.remaining[i] = i
	}

	// Fisher-Yates driven by the mixed seed
	state := a.poolSeed(poolKey)
	for i := size - 1; i > 0; i-- {
		j := int(splitmix32(&state) % uint32(i+1))
		p.remaining[i], p.remaining[j] = p.remaining[j], p.remaining[i]
	}

	return p
}

// Draw returns the next unused index into a catalog of the given size.
// The pool refills (and may then legally repeat earlier items) only once
// every index has been handed out. A size change, as when a room switches
// to a different custom word list, discards the stale pool.
func (a *Allocator) Draw(poolKey string, size int) (int, error) {
	if size <= 0 {
		return 0, errEmptyPool
	}

	p, ok := a.pools[poolKey]
	if !ok || len(p.remaining) == 0 || p.size != size {
		p = a.refill(poolKey, size)
		a.pools[poolKey] = p
	}

	idx := p.remaining[len(p.remaining)-1]
	p.remaining = p.remaining[:len(p.remaining)-1]

	return idx, nil
}
