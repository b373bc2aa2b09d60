// This module holds the named deques served by the ports. The keyspace is split into shards and each shard
// has its own mutex, held for the whole of every operation on a deque in that shard, so clients working on different
// keys rarely contend. Elements are owned copies of the bytes the client sent.

package port

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/deque/pkg/deque"
	"github.com/nobletooth/deque/pkg/scan"
	"github.com/nobletooth/deque/pkg/utils"
)

var (
	storeShards   = flag.Int("store_shards", 16, "Number of lock shards the deque keyspace is split into.")
	maxDequeNodes = flag.Int64("max_deque_nodes", 1<<20, "Maximum number of elements a single deque can hold.")
)

// metricsName labels the metrics of every deque held by the store.
const metricsName = "port"

// End picks a side of a deque.
type End uint8

const (
	Front End = iota
	Back
)

func (e End) String() string {
	if e == Front {
		return "front"
	}
	return "back"
}

// dequeShard is a slice of the keyspace guarded by a single mutex.
type dequeShard struct {
	mux    sync.Mutex
	deques map[string]*deque.Deque[[]byte]
}

// DequeStore is the deque storage backend used by ports, e.g. Redis.
type DequeStore struct {
	shards   []*dequeShard
	maxNodes int
}

// NewDequeStore creates an empty store configured by the --store_shards and --max_deque_nodes flags.
func NewDequeStore() (*DequeStore, error) {
	if *storeShards <= 0 {
		return nil, fmt.Errorf("--store_shards must be positive, got %d", *storeShards)
	}
	if *maxDequeNodes <= 0 || *maxDequeNodes > math.MaxInt32 {
		return nil, fmt.Errorf("--max_deque_nodes must be in (0, %d], got %d", math.MaxInt32, *maxDequeNodes)
	}

	store := &DequeStore{shards: make([]*dequeShard, *storeShards), maxNodes: int(*maxDequeNodes)}
	for i := range store.shards {
		store.shards[i] = &dequeShard{deques: make(map[string]*deque.Deque[[]byte])}
	}
	return store, nil
}

// shardOf picks the shard owning `key`.
func (s *DequeStore) shardOf(key string) *dequeShard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// Push adds copies of `values` to the `end` of the deque under `key`, creating the deque if needed.
// Values are pushed one by one, so pushing [a b] to the front leaves b first. Returns the new length.
// Either all values are pushed or none are.
func (s *DequeStore) Push(key string, end End, values ...[]byte) (int, error) {
	sh := s.shardOf(key)
	sh.mux.Lock()
	defer sh.mux.Unlock()

	d, exists := sh.deques[key]
	if !exists {
		d = deque.New[[]byte](deque.WithName(metricsName), deque.WithMaxNodes(s.maxNodes))
	}
	if d.Len()+len(values) > s.maxNodes {
		return d.Len(), fmt.Errorf("%w: deque '%s' can hold at most %d elements",
			deque.ErrAllocationFailed, key, s.maxNodes)
	}

	push := d.PushBack
	if end == Front {
		push = d.PushFront
	}
	for _, value := range values {
		if err := push(bytes.Clone(value)); err != nil {
			// The budget was checked above, so the deque refused for another reason.
			utils.RaiseInvariant("store", "push_failed", "Failed to push into a deque within budget.",
				"key", key, "end", end, "error", err)
			return d.Len(), fmt.Errorf("failed to push to the %s of '%s': %w", end, key, err)
		}
	}
	if !exists {
		sh.deques[key] = d
	}
	return d.Len(), nil
}

// Pop removes and returns the element at the `end` of the deque under `key`, or false if there's none.
func (s *DequeStore) Pop(key string, end End) ([]byte, bool) {
	sh := s.shardOf(key)
	sh.mux.Lock()
	defer sh.mux.Unlock()

	d, exists := sh.deques[key]
	if !exists {
		return nil, false
	}
	if end == Front {
		return d.PopFront()
	}
	return d.PopBack()
}

// Len returns the number of elements under `key`; missing keys have zero elements.
func (s *DequeStore) Len(key string) int {
	sh := s.shardOf(key)
	sh.mux.Lock()
	defer sh.mux.Unlock()

	if d, exists := sh.deques[key]; exists {
		return d.Len()
	}
	return 0
}

// Walk returns copies of all elements under `key`, head to tail or tail to head when `reverse` is set.
func (s *DequeStore) Walk(key string, reverse bool) [][]byte {
	sh := s.shardOf(key)
	sh.mux.Lock()
	defer sh.mux.Unlock()

	d, exists := sh.deques[key]
	if !exists {
		return nil
	}
	elements := make([][]byte, 0, d.Len())
	seq := d.All()
	if reverse {
		seq = d.Backward()
	}
	for element := range seq {
		elements = append(elements, bytes.Clone(*element))
	}
	return elements
}

// Clear empties the deque under `key` but keeps the key. Returns the number of removed elements.
func (s *DequeStore) Clear(key string) int {
	sh := s.shardOf(key)
	sh.mux.Lock()
	defer sh.mux.Unlock()

	d, exists := sh.deques[key]
	if !exists {
		return 0
	}
	removed := d.Len()
	d.Clear()
	return removed
}

// Delete destroys the deques under `keys`. Returns how many of them existed.
func (s *DequeStore) Delete(keys ...string) int {
	deleted := 0
	for _, key := range keys {
		sh := s.shardOf(key)
		sh.mux.Lock()
		if d, exists := sh.deques[key]; exists {
			d.Destroy()
			delete(sh.deques, key)
			deleted++
		}
		sh.mux.Unlock()
	}
	return deleted
}

// Keys returns the sorted keys matching the glob `pattern`.
func (s *DequeStore) Keys(pattern string) ([]string, error) {
	var keys []string
	for _, sh := range s.shards {
		sh.mux.Lock()
		keys = slices.AppendSeq(keys, maps.Keys(sh.deques))
		sh.mux.Unlock()
	}
	slices.Sort(keys)

	matched, err := scan.MatchGlob(pattern, slices.Values(keys))
	if err != nil {
		return nil, err
	}
	return slices.Collect(matched), nil
}

// Close destroys every deque in the store. The store is empty but usable afterward.
func (s *DequeStore) Close() error {
	destroyed := 0
	for _, sh := range s.shards {
		sh.mux.Lock()
		for key, d := range sh.deques {
			d.Destroy()
			delete(sh.deques, key)
			destroyed++
		}
		sh.mux.Unlock()
	}
	slog.Debug("Deque store closed.", "destroyedDeques", destroyed)
	return nil
}
