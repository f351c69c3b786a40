package smc

import "sync"

// keyCacheSize bounds the key cache. Systems with more sensors than this
// keep working; surplus keys just rotate through the cache.
const keyCacheSize = 64

type keySlot struct {
	key   string
	index int
	used  bool
}

// keyCache maps sensor keys to their last-seen position in the snapshot.
// Internally synchronized so a multi-threaded driver sharing one family
// stays safe; eviction is round-robin over the oldest-written slot, not LRU.
type keyCache struct {
	mu    sync.Mutex
	slots [keyCacheSize]keySlot
	next  int
}

func (c *keyCache) get(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.slots {
		if c.slots[i].used && c.slots[i].key == key {
			return c.slots[i].index, true
		}
	}
	return 0, false
}

func (c *keyCache) put(key string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.slots {
		if c.slots[i].used && c.slots[i].key == key {
			c.slots[i].index = index
			return
		}
	}
	c.slots[c.next] = keySlot{key: key, index: index, used: true}
	c.next = (c.next + 1) % keyCacheSize
}
