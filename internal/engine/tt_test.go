package engine

import (
	"testing"

	"github.com/matryer/is"
)

func TestTTStoreAndProbe(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1024)
	best := PlaceAt(Pos{1, 2})
	tt.Store(0xdeadbeef, 3, 42.5, TTLower, best)

	entry, ok := tt.Probe(0xdeadbeef)
	is.True(ok)
	is.Equal(entry.Depth, 3)
	is.Equal(entry.Score, 42.5)
	is.Equal(entry.Flag, TTLower)
	is.True(entry.Best.Equals(best))

	_, ok = tt.Probe(0xfeedface)
	is.True(!ok)
	is.Equal(tt.Count(), 1)
	is.Equal(tt.Stats().Hits, uint64(1))
	is.Equal(tt.Stats().Probes, uint64(2))
}

func TestTTKeepsDeeperEntryWithinGeneration(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1024)
	tt.Store(7, 5, 1, TTExact, PlaceAt(Pos{0, 0}))
	tt.Store(7, 2, 2, TTExact, PlaceAt(Pos{1, 1}))
	entry, ok := tt.Probe(7)
	is.True(ok)
	is.Equal(entry.Depth, 5)

	tt.NextGeneration()
	tt.Store(7, 2, 2, TTExact, PlaceAt(Pos{1, 1}))
	entry, _ = tt.Probe(7)
	is.Equal(entry.Depth, 2) // older searches give way
	is.Equal(tt.Count(), 1)
}

func TestTTBucketEvictsShallowest(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(4)
	slots := uint64(tt.Capacity() / ttBuckets)
	// three keys landing in the same bucket
	k1, k2, k3 := uint64(1), 1+slots, 1+2*slots
	tt.Store(k1, 4, 0, TTExact, Move{})
	tt.Store(k2, 1, 0, TTExact, Move{})
	tt.Store(k3, 3, 0, TTExact, Move{})

	_, ok := tt.Probe(k1)
	is.True(ok)
	_, ok = tt.Probe(k2)
	is.True(!ok) // shallowest went
	_, ok = tt.Probe(k3)
	is.True(ok)
	is.Equal(tt.Stats().Overwrites, uint64(1))
}

func TestTTClearsWhenOverThreshold(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(6)
	for key := uint64(0); tt.Count() < 6; key++ {
		tt.Store(key, 1, 0, TTExact, Move{})
	}
	is.Equal(tt.Stats().Clears, uint64(0))
	tt.Store(1000, 1, 0, TTExact, Move{})
	is.Equal(tt.Stats().Clears, uint64(1))
	is.Equal(tt.Count(), 1)
	_, ok := tt.Probe(1000)
	is.True(ok)
}

func TestNextPowerOfTwo(t *testing.T) {
	is := is.New(t)
	is.Equal(nextPowerOfTwo(0), uint64(1))
	is.Equal(nextPowerOfTwo(1), uint64(1))
	is.Equal(nextPowerOfTwo(3), uint64(4))
	is.Equal(nextPowerOfTwo(100000), uint64(131072))
}
