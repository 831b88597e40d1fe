package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/archsim/rv32ooo/timing/latency"
)

// Config holds L1 data cache configuration.
type Config struct {
	// Size in bytes.
	Size int
	// Associativity (number of ways).
	Associativity int
	// BlockSize in bytes (cache line size).
	BlockSize int
}

// DefaultL1DConfig returns the §2B default: a small, direct-enough L1
// sized for the benchmark scenarios rather than for realism.
func DefaultL1DConfig() Config {
	return Config{
		Size:          4 * 1024, // 4KB
		Associativity: 4,        // 4-way
		BlockSize:     32,       // 32B cache line
	}
}

// AccessResult describes one cache access.
type AccessResult struct {
	Hit     bool
	Latency uint64
}

// Statistics holds cumulative cache counters, surfaced alongside the
// pipeline's own Stats in breakdowns.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// BackingStore is the next level of the memory hierarchy below the
// cache: the flat memory image.
type BackingStore interface {
	Read(addr uint32, size int) []byte
	Write(addr uint32, data []byte)
}

// Cache is an L1 data cache sitting in front of a BackingStore, built on
// Akita's directory and LRU victim-finder, and wired directly into the
// MCU array as an ooo.MemAccessor: loads and stores pay the configured
// hit or miss latency instead of the flat accessor's fixed nominal one.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	dataStore [][]byte
	stats     Statistics
	backing   BackingStore
	lat       *latency.TimingConfig
}

// New creates a Cache of the given configuration in front of backing,
// charging lat's pinned hit/miss latencies on access.
func New(config Config, backing BackingStore, lat *latency.TimingConfig) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
		lat:       lat,
	}
}

// Config returns the cache's configuration.
func (c *Cache) Config() Config { return c.config }

// Stats returns cumulative cache statistics.
func (c *Cache) Stats() Statistics { return c.stats }

// ResetStats clears cumulative cache statistics.
func (c *Cache) ResetStats() { c.stats = Statistics{} }

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint32) uint64 {
	bs := uint64(c.config.BlockSize)
	return (uint64(addr) / bs) * bs
}

// access performs the directory lookup shared by reads and writes,
// fetching from backing on a miss and returning the resident block plus
// whether it was a hit.
func (c *Cache) access(addr uint32) (*akitacache.Block, bool) {
	ba := c.blockAddr(addr)
	block := c.directory.Lookup(0, ba)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return block, true
	}

	c.stats.Misses++
	victim := c.directory.FindVictim(ba)
	victimData := c.dataStore[c.blockIndex(victim)]
	if victim.IsValid {
		c.stats.Evictions++
		if victim.IsDirty && c.backing != nil {
			c.backing.Write(uint32(victim.Tag), victimData)
		}
	}
	if c.backing != nil {
		copy(victimData, c.backing.Read(uint32(ba), c.config.BlockSize))
	} else {
		for i := range victimData {
			victimData[i] = 0
		}
	}
	victim.Tag = ba
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)
	return victim, false
}

func (c *Cache) readBytes(addr uint32, size int) []byte {
	c.stats.Reads++
	block, _ := c.access(addr)
	data := c.dataStore[c.blockIndex(block)]
	offset := int(uint64(addr) % uint64(c.config.BlockSize))
	return append([]byte(nil), data[offset:offset+size]...)
}

func (c *Cache) writeBytes(addr uint32, payload []byte) {
	c.stats.Writes++
	block, _ := c.access(addr)
	data := c.dataStore[c.blockIndex(block)]
	offset := int(uint64(addr) % uint64(c.config.BlockSize))
	copy(data[offset:offset+len(payload)], payload)
	block.IsDirty = true
}

// LB loads a sign-extended byte through the cache.
func (c *Cache) LB(addr uint32) (uint32, error) {
	b := c.readBytes(addr, 1)
	return uint32(int32(int8(b[0]))), nil
}

// LBU loads a zero-extended byte through the cache.
func (c *Cache) LBU(addr uint32) (uint32, error) {
	b := c.readBytes(addr, 1)
	return uint32(b[0]), nil
}

// LH loads a sign-extended halfword through the cache.
func (c *Cache) LH(addr uint32) (uint32, error) {
	b := c.readBytes(addr, 2)
	v := uint16(b[0]) | uint16(b[1])<<8
	return uint32(int32(int16(v))), nil
}

// LHU loads a zero-extended halfword through the cache.
func (c *Cache) LHU(addr uint32) (uint32, error) {
	b := c.readBytes(addr, 2)
	return uint32(uint16(b[0]) | uint16(b[1])<<8), nil
}

// LW loads a word through the cache.
func (c *Cache) LW(addr uint32) (uint32, error) {
	b := c.readBytes(addr, 4)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// SB stores the low byte of v through the cache.
func (c *Cache) SB(addr uint32, v uint32) error {
	c.writeBytes(addr, []byte{byte(v)})
	return nil
}

// SH stores the low halfword of v through the cache.
func (c *Cache) SH(addr uint32, v uint32) error {
	c.writeBytes(addr, []byte{byte(v), byte(v >> 8)})
	return nil
}

// SW stores a full word through the cache.
func (c *Cache) SW(addr uint32, v uint32) error {
	c.writeBytes(addr, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
	return nil
}

// AccessLatency reports a hit or miss against the directory without
// mutating cache state, so the MCU can charge the correct latency before
// the access itself runs at the end of the lane's occupancy.
func (c *Cache) AccessLatency(addr uint32, width uint8, isWrite bool) uint64 {
	ba := c.blockAddr(addr)
	block := c.directory.Lookup(0, ba)
	if block != nil && block.IsValid {
		return c.lat.L1HitLatency
	}
	return c.lat.L1MissLatency
}

// Flush writes back every dirty block to the backing store and
// invalidates the cache, mirroring a pipeline flush/drain boundary.
func (c *Cache) Flush() {
	sets := c.directory.GetSets()
	for _, set := range sets {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.backing.Write(uint32(block.Tag), c.dataStore[c.blockIndex(block)])
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates every cache line without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
