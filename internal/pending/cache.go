// Package pending holds the short-lived per-sender state that lets a user send
// a menu photo and then name the restaurant in a follow-up message.
package pending

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vbonduro/menumate/internal/domain"
)

const (
	DefaultTTL        = 600 * time.Second
	DefaultMaxEntries = 10000

	shardCount = 64
)

// Cache stores at most one pending request per sender. Entries older than the
// TTL are reported as absent even when they are still physically stored.
type Cache interface {
	Get(sender string) (domain.PendingEntry, bool)
	Put(sender string, entry domain.PendingEntry)
	// Update runs fn with the sender's current fresh entry while holding that
	// sender's lock. The returned entry is stored when keep is true.
	Update(sender string, fn func(current domain.PendingEntry, ok bool) (next domain.PendingEntry, keep bool))
}

// Store is a bounded Cache. Capacity is enforced with LRU eviction; expired
// entries are swept in the background and also rejected at read time against
// the injected clock.
type Store struct {
	entries *expirable.LRU[string, domain.PendingEntry]
	ttl     time.Duration
	now     func() time.Time
	locks   [shardCount]sync.Mutex
}

type Option func(*Store)

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(maxEntries int, ttl time.Duration, opts ...Option) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		entries: expirable.NewLRU[string, domain.PendingEntry](maxEntries, nil, ttl),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(sender string) (domain.PendingEntry, bool) {
	mu := s.lockFor(sender)
	mu.Lock()
	defer mu.Unlock()
	return s.fresh(sender)
}

func (s *Store) Put(sender string, entry domain.PendingEntry) {
	mu := s.lockFor(sender)
	mu.Lock()
	defer mu.Unlock()
	s.entries.Add(sender, entry)
}

func (s *Store) Update(sender string, fn func(current domain.PendingEntry, ok bool) (domain.PendingEntry, bool)) {
	mu := s.lockFor(sender)
	mu.Lock()
	defer mu.Unlock()

	current, ok := s.fresh(sender)
	next, keep := fn(current, ok)
	if keep {
		s.entries.Add(sender, next)
	}
}

// Len reports the number of physically stored entries, stale ones included.
func (s *Store) Len() int {
	return s.entries.Len()
}

// fresh must be called with the sender's lock held.
func (s *Store) fresh(sender string) (domain.PendingEntry, bool) {
	entry, ok := s.entries.Get(sender)
	if !ok {
		return domain.PendingEntry{}, false
	}
	if s.now().Sub(entry.CreatedAt) > s.ttl {
		return domain.PendingEntry{}, false
	}
	return entry, true
}

func (s *Store) lockFor(sender string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sender))
	return &s.locks[h.Sum32()%shardCount]
}
