// Package cache implements the shared in-memory query cache. Every read
// operation of the API layer stores its result here under a prefix-stable
// Key; mutations mark matching entries stale through Invalidate rather than
// refetching themselves.
package cache

import (
	"sync"
	"time"
)

// Result describes what a lookup found.
type Result int

const (
	// Miss means no usable entry exists and the caller must fetch.
	Miss Result = iota
	// Stale means a value exists but is past its staleness window or was
	// invalidated; the caller may serve it while refetching.
	Stale
	// Fresh means the value is within its staleness window.
	Fresh
)

// Options control the lifetime of a single entry.
type Options struct {
	// StaleTime is how long a fetched value counts as fresh. Zero means
	// the value is stale as soon as it lands, matching the conservative
	// default for fast-moving resources.
	StaleTime time.Duration

	// CacheTime is the inactivity window after which an untouched entry
	// is evicted entirely.
	CacheTime time.Duration
}

// DefaultOptions is applied when Set is called with zero Options.
var DefaultOptions = Options{
	StaleTime: 0,
	CacheTime: 5 * time.Minute,
}

type entry struct {
	key        Key
	value      any
	fetchedAt  time.Time
	freshUntil time.Time
	evictAt    time.Time
	cacheTime  time.Duration
	marked     bool
}

// Store is the process-wide query cache. It is constructed once at startup
// and handed to the API client; it is never a package-level global. Safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*entry
	defaults Options
	now      func() time.Time
}

// New creates an empty cache with the given default entry options. Zero
// fields fall back to DefaultOptions.
func New(defaults Options) *Store {
	if defaults.CacheTime == 0 {
		defaults.CacheTime = DefaultOptions.CacheTime
	}
	return &Store{
		entries:  make(map[string]*entry),
		defaults: defaults,
		now:      time.Now,
	}
}

// Get looks up a key. On a hit the entry's eviction deadline is pushed out
// by its inactivity window, so observed entries survive while unobserved
// ones age out.
func (s *Store) Get(k Key) (any, Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k.String()]
	if !ok {
		return nil, Miss
	}

	now := s.now()
	if now.After(e.evictAt) {
		delete(s.entries, k.String())
		return nil, Miss
	}

	e.evictAt = now.Add(e.cacheTime)
	if e.marked || now.After(e.freshUntil) {
		return e.value, Stale
	}
	return e.value, Fresh
}

// Set stores a freshly fetched value. Zero Options fields take the store
// defaults. Setting a key clears any stale mark.
func (s *Store) Set(k Key, v any, opts Options) {
	if opts.StaleTime == 0 {
		opts.StaleTime = s.defaults.StaleTime
	}
	if opts.CacheTime == 0 {
		opts.CacheTime = s.defaults.CacheTime
	}

	now := s.now()
	s.mu.Lock()
	s.entries[k.String()] = &entry{
		key:        k,
		value:      v,
		fetchedAt:  now,
		freshUntil: now.Add(opts.StaleTime),
		evictAt:    now.Add(opts.CacheTime),
		cacheTime:  opts.CacheTime,
		marked:     false,
	}
	s.mu.Unlock()
}

// Invalidate marks every entry whose key starts with prefix as stale and
// returns how many entries matched. It never evicts: the stale value stays
// available until the next read triggers a refetch.
func (s *Store) Invalidate(prefix Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		if e.key.HasPrefix(prefix) {
			e.marked = true
			n++
		}
	}
	return n
}

// Delete removes a single entry. Idempotent.
func (s *Store) Delete(k Key) {
	s.mu.Lock()
	delete(s.entries, k.String())
	s.mu.Unlock()
}

// Clear drops every entry. Used by session teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
}

// Sweep evicts entries past their inactivity deadline and returns the count
// removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if now.After(e.evictAt) {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// Len reports the number of live entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
