package pending

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/menumate/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(100, DefaultTTL, WithClock(clock.Now)), clock
}

func TestStorePutGet(t *testing.T) {
	s, clock := newTestStore(t)

	s.Put("+15550001", domain.PendingEntry{MediaURL: "https://img/1", Question: "What should I order?", CreatedAt: clock.Now()})

	got, ok := s.Get("+15550001")
	require.True(t, ok)
	assert.Equal(t, "https://img/1", got.MediaURL)

	_, ok = s.Get("+15550002")
	assert.False(t, ok)
}

func TestStoreStaleEntryIsAbsent(t *testing.T) {
	s, clock := newTestStore(t)
	s.Put("+15550001", domain.PendingEntry{MediaURL: "https://img/1", CreatedAt: clock.Now()})

	clock.Advance(599 * time.Second)
	_, ok := s.Get("+15550001")
	assert.True(t, ok, "entry younger than the TTL must be visible")

	clock.Advance(2 * time.Second)
	_, ok = s.Get("+15550001")
	assert.False(t, ok, "entry older than the TTL must be absent")
	assert.Equal(t, 1, s.Len(), "stale entry is still physically stored")
}

func TestStoreOverwrite(t *testing.T) {
	s, clock := newTestStore(t)
	s.Put("+15550001", domain.PendingEntry{MediaURL: "https://img/old", CreatedAt: clock.Now()})
	s.Put("+15550001", domain.PendingEntry{MediaURL: "https://img/new", CreatedAt: clock.Now()})

	got, ok := s.Get("+15550001")
	require.True(t, ok)
	assert.Equal(t, "https://img/new", got.MediaURL)
}

func TestStoreBounded(t *testing.T) {
	s := NewStore(3, DefaultTTL)
	for i := 0; i < 10; i++ {
		s.Put(strconv.Itoa(i), domain.PendingEntry{CreatedAt: time.Now()})
	}

	assert.Equal(t, 3, s.Len())
	_, ok := s.Get("0")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = s.Get("9")
	assert.True(t, ok)
}

func TestStoreUpdateSeesStaleAsAbsent(t *testing.T) {
	s, clock := newTestStore(t)
	s.Put("+15550001", domain.PendingEntry{MediaURL: "https://img/1", CreatedAt: clock.Now()})
	clock.Advance(11 * time.Minute)

	var sawOK bool
	s.Update("+15550001", func(_ domain.PendingEntry, ok bool) (domain.PendingEntry, bool) {
		sawOK = ok
		return domain.PendingEntry{}, false
	})
	assert.False(t, sawOK)
}

// Image and follow-up text for the same sender race on the entry; Update must
// not lose writes.
func TestStoreConcurrentUpdatesSameSender(t *testing.T) {
	s, clock := newTestStore(t)
	const writers = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("+15550001", func(cur domain.PendingEntry, ok bool) (domain.PendingEntry, bool) {
				n := 0
				if ok {
					n, _ = strconv.Atoi(cur.Question)
				}
				return domain.PendingEntry{Question: strconv.Itoa(n + 1), CreatedAt: clock.Now()}, true
			})
		}()
	}
	wg.Wait()

	got, ok := s.Get("+15550001")
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(writers), got.Question)
}

func TestStoreConcurrentPutGet(t *testing.T) {
	s, clock := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Put("+15550001", domain.PendingEntry{MediaURL: fmt.Sprintf("https://img/%d", i), CreatedAt: clock.Now()})
		}(i)
		go func() {
			defer wg.Done()
			if got, ok := s.Get("+15550001"); ok {
				assert.Contains(t, got.MediaURL, "https://img/")
			}
		}()
	}
	wg.Wait()

	_, ok := s.Get("+15550001")
	assert.True(t, ok)
}
