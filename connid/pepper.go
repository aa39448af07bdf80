package connid

import (
	"encoding/binary"
	"sync"

	"github.com/zeebo/blake3"
)

// SlotDuration is the fixed width of a connection-ID rotation window, in
// seconds. Two timestamps share a slot iff their integer division by
// SlotDuration is equal.
const SlotDuration = 120

// Secret is the 32-byte high-entropy value shared across all request
// handlers for the lifetime of the tracker process. It is never logged
// and never emitted on the wire.
type Secret [32]byte

// slot returns floor(ts / SlotDuration).
func slot(ts uint64) uint64 {
	return ts / SlotDuration
}

// pepper derives the rotating keyed-hash pepper for the slot containing
// ts: BLAKE3(secret || slot_as_LE_u64).
func pepper(secret Secret, ts uint64) block32 {
	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], slot(ts))

	h := blake3.New()
	h.Write(secret[:])
	h.Write(slotBytes[:])

	var out block32
	copy(out[:], h.Sum(nil))
	return out
}

// PepperCache memoizes peppers in two entries, one per slot parity
// (slot mod 2): adjacent slots, such as the current and previous one,
// never evict each other, while a slot of the same parity replaces the
// entry it lands on. Correctness never depends on it — it exists purely to avoid
// recomputing BLAKE3(secret || slot) twice per Verify call on hot paths.
// Safe for concurrent use.
type PepperCache struct {
	mu      sync.RWMutex
	secret  Secret
	entries [2]cacheEntry
}

type cacheEntry struct {
	valid bool
	slot  uint64
	value block32
}

// NewPepperCache returns a cache bound to secret. A cache must not be
// shared across different secrets.
func NewPepperCache(secret Secret) *PepperCache {
	return &PepperCache{secret: secret}
}

// Get returns the pepper for the slot containing ts, computing and
// caching it if necessary.
func (c *PepperCache) Get(ts uint64) block32 {
	s := slot(ts)

	c.mu.RLock()
	for _, e := range c.entries {
		if e.valid && e.slot == s {
			c.mu.RUnlock()
			return e.value
		}
	}
	c.mu.RUnlock()

	value := pepper(c.secret, ts)

	c.mu.Lock()
	c.entries[s%2] = cacheEntry{valid: true, slot: s, value: value}
	c.mu.Unlock()

	return value
}
