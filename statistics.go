package blockpool

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// Statistics is a snapshot of one or more pools
type Statistics struct {
	HighBlocks       int
	LowBlocks        int
	UnreservedBlocks int
	CachedUnits      int

	// PoolHits counts allocations served from the cache, PoolMisses those that went to the RawAllocator.
	// Pool-only allocations that find nothing are not misses.
	PoolHits   int
	PoolMisses int
}

func (s *Statistics) Clear() {
	s.HighBlocks = 0
	s.LowBlocks = 0
	s.UnreservedBlocks = 0
	s.CachedUnits = 0
	s.PoolHits = 0
	s.PoolMisses = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.HighBlocks += other.HighBlocks
	s.LowBlocks += other.LowBlocks
	s.UnreservedBlocks += other.UnreservedBlocks
	s.CachedUnits += other.CachedUnits
	s.PoolHits += other.PoolHits
	s.PoolMisses += other.PoolMisses
}

// CachedBlocks returns the number of blocks held in both tiers
func (s *Statistics) CachedBlocks() int {
	return s.HighBlocks + s.LowBlocks
}

func (s *Statistics) PrintJson(json *jwriter.ObjectState) {
	json.Name("HighBlocks").Int(s.HighBlocks)
	json.Name("LowBlocks").Int(s.LowBlocks)
	json.Name("UnreservedBlocks").Int(s.UnreservedBlocks)
	json.Name("CachedUnits").Int(s.CachedUnits)
	json.Name("PoolHits").Int(s.PoolHits)
	json.Name("PoolMisses").Int(s.PoolMisses)
}
