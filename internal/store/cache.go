package store

import (
	"slices"
	"sync"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// SummaryCache holds the latest climatology per station, evicting the least
// recently used station once maxEntries is exceeded. Safe for concurrent use.
type SummaryCache struct {
	maxEntries int
	lookups    *prometheus.CounterVec // labels: result={hit,miss}; may be nil

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key   string
	value domain.Climatology
	prev  *entry
	next  *entry
}

// NewSummaryCache creates a cache bounded to maxEntries stations. Pass a nil
// counter to skip hit/miss accounting.
func NewSummaryCache(maxEntries int, lookups *prometheus.CounterVec) *SummaryCache {
	return &SummaryCache{
		maxEntries: maxEntries,
		lookups:    lookups,
		entries:    make(map[string]*entry),
	}
}

// Get returns the cached climatology for station and marks it recently used.
func (c *SummaryCache) Get(station string) (domain.Climatology, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[station]
	if !ok {
		c.observe("miss")
		return domain.Climatology{}, false
	}
	c.observe("hit")
	c.moveToFront(e)
	return e.value, true
}

// Put stores the climatology under its station id.
func (c *SummaryCache) Put(summary domain.Climatology) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[summary.Station]; ok {
		e.value = summary
		c.moveToFront(e)
		return
	}

	e := &entry{key: summary.Station, value: summary}
	c.entries[summary.Station] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Stations returns the cached station ids in sorted order.
func (c *SummaryCache) Stations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of cached stations.
func (c *SummaryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SummaryCache) observe(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

func (c *SummaryCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *SummaryCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *SummaryCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *SummaryCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
