package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestPendingRepo_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	r := NewPendingRepo(60*time.Second, clock.Now)
	t0 := clock.Now()

	r.Put("Reading Club", "https://example.com/a")

	assert.Equal(t, 0, r.Purge(t0.Add(59*time.Second)))
	clock.t = t0.Add(59 * time.Second)
	content, ok := r.Take("Reading Club")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a", content)

	clock.t = t0
	r.Put("Reading Club", "https://example.com/a")
	assert.Equal(t, 1, r.Purge(t0.Add(61*time.Second)))
	_, ok = r.Take("Reading Club")
	assert.False(t, ok)
}

func TestPendingRepo_TakeRemoves(t *testing.T) {
	clock := newFakeClock()
	r := NewPendingRepo(time.Minute, clock.Now)

	r.Put("Alice", "https://example.com/a")
	_, ok := r.Take("Alice")
	require.True(t, ok)

	_, ok = r.Take("Alice")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestPendingRepo_OverwriteKeepsLatest(t *testing.T) {
	clock := newFakeClock()
	r := NewPendingRepo(time.Minute, clock.Now)

	r.Put("Alice", "https://example.com/first")
	clock.Advance(10 * time.Second)
	r.Put("Alice", "https://example.com/second")

	assert.Equal(t, 1, r.Len())
	content, ok := r.Take("Alice")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/second", content)
}

func TestPendingRepo_TakeIgnoresExpiredBeforePurge(t *testing.T) {
	clock := newFakeClock()
	r := NewPendingRepo(time.Minute, clock.Now)

	r.Put("Alice", "https://example.com/a")
	clock.Advance(2 * time.Minute)

	_, ok := r.Take("Alice")
	assert.False(t, ok)
}

func TestSummaryRepo_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	r := NewSummaryRepo(300*time.Second, clock.Now)
	t0 := clock.Now()

	r.Put("Alice", "https://example.com/a", "page text")

	entry, ok := r.GetIfFresh("Alice", t0.Add(299*time.Second))
	require.True(t, ok)
	assert.Equal(t, "page text", entry.Content)
	assert.Equal(t, "https://example.com/a", entry.SourceURL)
	assert.Equal(t, t0, entry.CreatedAt)

	_, ok = r.GetIfFresh("Alice", t0.Add(301*time.Second))
	assert.False(t, ok)
	// Stale reads do not delete
	assert.True(t, r.Has("Alice"))

	assert.Equal(t, 1, r.Purge(t0.Add(301*time.Second)))
	assert.False(t, r.Has("Alice"))
}

func TestSummaryRepo_ReadIsNonDestructive(t *testing.T) {
	clock := newFakeClock()
	r := NewSummaryRepo(5*time.Minute, clock.Now)

	r.Put("Alice", "https://example.com/a", "page text")

	for i := 0; i < 3; i++ {
		_, ok := r.GetIfFresh("Alice", clock.Now())
		assert.True(t, ok)
	}
	assert.Equal(t, 1, r.Len())
}

func TestSummaryRepo_OverwriteKeepsLatest(t *testing.T) {
	clock := newFakeClock()
	r := NewSummaryRepo(5*time.Minute, clock.Now)

	r.Put("Alice", "https://example.com/a", "first")
	r.Put("Alice", "https://example.com/b", "second")

	entry, ok := r.GetIfFresh("Alice", clock.Now())
	require.True(t, ok)
	assert.Equal(t, "second", entry.Content)
	assert.Equal(t, 1, r.Len())
}
