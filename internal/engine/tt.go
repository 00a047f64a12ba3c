package engine

import "github.com/rs/zerolog/log"

type TTFlag uint8

const (
	TTExact TTFlag = iota + 1
	TTLower
	TTUpper
)

func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "exact"
	case TTLower:
		return "lower"
	case TTUpper:
		return "upper"
	default:
		return "unknown"
	}
}

const ttBuckets = 2

type TTEntry struct {
	Key   uint64
	Depth int
	Score float64
	Flag  TTFlag
	Best  Move
	Gen   uint32
	Valid bool
}

type TTStats struct {
	Probes     uint64 `json:"probes"`
	Hits       uint64 `json:"hits"`
	Stores     uint64 `json:"stores"`
	Overwrites uint64 `json:"overwrites"`
	Clears     uint64 `json:"clears"`
}

// TranspositionTable is a fixed-size, two-way bucketed cache of search
// results. It is cleared wholesale once the live entry count passes
// maxEntries. Not safe for concurrent use.
type TranspositionTable struct {
	mask       uint64
	entries    []TTEntry
	used       int
	maxEntries int
	gen        uint32
	stats      TTStats
}

func NewTranspositionTable(maxEntries int) *TranspositionTable {
	if maxEntries < ttBuckets {
		maxEntries = ttBuckets
	}
	slots := nextPowerOfTwo(uint64(maxEntries) / ttBuckets)
	return &TranspositionTable{
		mask:       slots - 1,
		entries:    make([]TTEntry, int(slots)*ttBuckets),
		maxEntries: maxEntries,
		gen:        1,
	}
}

// NextGeneration ages every stored entry by one search.
func (tt *TranspositionTable) NextGeneration() {
	tt.gen++
	if tt.gen == 0 {
		tt.gen = 1
	}
}

func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.used = 0
	tt.gen = 1
	tt.stats.Clears++
}

func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	tt.stats.Probes++
	start := tt.bucketIndex(key)
	for i := start; i < start+ttBuckets; i++ {
		if tt.entries[i].Valid && tt.entries[i].Key == key {
			tt.stats.Hits++
			return tt.entries[i], true
		}
	}
	return TTEntry{}, false
}

func (tt *TranspositionTable) Store(key uint64, depth int, score float64, flag TTFlag, best Move) {
	if tt.used >= tt.maxEntries {
		log.Debug().Int("entries", tt.used).Int("max", tt.maxEntries).Msg("tt-overflow-clear")
		tt.Clear()
	}
	tt.stats.Stores++
	entry := TTEntry{Key: key, Depth: depth, Score: score, Flag: flag, Best: best, Gen: tt.gen, Valid: true}
	start := tt.bucketIndex(key)

	for i := start; i < start+ttBuckets; i++ {
		old := tt.entries[i]
		if !old.Valid || old.Key != key {
			continue
		}
		if depth >= old.Depth || old.Gen != tt.gen {
			tt.entries[i] = entry
		}
		return
	}

	for i := start; i < start+ttBuckets; i++ {
		if !tt.entries[i].Valid {
			tt.entries[i] = entry
			tt.used++
			return
		}
	}

	victim := start
	for i := start + 1; i < start+ttBuckets; i++ {
		if evictsBefore(tt.entries[i], tt.entries[victim], tt.gen) {
			victim = i
		}
	}
	tt.entries[victim] = entry
	tt.stats.Overwrites++
}

// evictsBefore prefers stale generations, then shallower searches.
func evictsBefore(a, b TTEntry, gen uint32) bool {
	aStale, bStale := a.Gen != gen, b.Gen != gen
	if aStale != bStale {
		return aStale
	}
	return a.Depth < b.Depth
}

func (tt *TranspositionTable) Count() int {
	return tt.used
}

func (tt *TranspositionTable) Capacity() int {
	return len(tt.entries)
}

func (tt *TranspositionTable) Stats() TTStats {
	return tt.stats
}

func (tt *TranspositionTable) bucketIndex(key uint64) int {
	return int(key&tt.mask) * ttBuckets
}

func nextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}
