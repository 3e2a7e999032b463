// Package placement implements the consistent-hashing placement oracle of
// spec §4.1: destination(name, world_size) -> rank in [0, world_size).
//
// Two modes coexist, selected at construction time and immutable for the
// lifetime of the Oracle, mirroring cluster.HrwTarget's digest-then-compare
// loop in the teacher repo:
//
//   - bypass: dst = xxhash32(name, seed=0) mod world_size
//   - ring:   dst = owner of the first token >= xxhash64(name, seed=0),
//     wrapping to the smallest token on tie, over a ring of
//     world_size * virtual_factor tokens
package placement

import (
	"sort"

	"github.com/OneOfOne/xxhash"
)

const hashSeed = 0

// Oracle is a pure function of (name, world size); the world size and
// virtual factor are fixed at construction so every rank that builds an
// Oracle with identical inputs computes identical destinations.
type Oracle struct {
	worldSize     int
	virtualFactor int
	bypass        bool
	ring          []token
}

type token struct {
	hash uint64
	rank int
}

// New builds the placement oracle for a world of the given size. When
// bypass is true, Destination uses the flat xxhash32-mod-N fast path;
// otherwise it builds and consults a virtualFactor*worldSize-token ring.
//
// New never needs a "protocol" beyond ring construction: unknown protocol
// names are a configuration error and must be rejected by the caller
// (cmn.LoadConfig) before New is ever invoked.
func New(worldSize, virtualFactor int, bypass bool) *Oracle {
	o := &Oracle{worldSize: worldSize, virtualFactor: virtualFactor, bypass: bypass}
	if !bypass {
		o.ring = buildRing(worldSize, virtualFactor)
	}
	return o
}

func buildRing(worldSize, virtualFactor int) []token {
	ring := make([]token, 0, worldSize*virtualFactor)
	for rank := 0; rank < worldSize; rank++ {
		for v := 0; v < virtualFactor; v++ {
			vtoken := ringToken(rank, v)
			ring = append(ring, token{hash: vtoken, rank: rank})
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i].hash < ring[j].hash })
	return ring
}

// ringToken derives the hash of the v'th virtual node for rank: the ring
// itself is built once per world, so this need not be cheap, only stable
// across every rank that builds it with the same (worldSize, virtualFactor).
func ringToken(rank, v int) uint64 {
	buf := [8]byte{
		byte(rank >> 24), byte(rank >> 16), byte(rank >> 8), byte(rank),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
	return xxhash.Checksum64S(buf[:], hashSeed)
}

// Destination resolves name to a destination rank in [0, worldSize). Given
// identical (protocol, world_size, virtual_factor, seed, name), every rank
// computes the same destination; this is the oracle's only correctness
// requirement.
func (o *Oracle) Destination(name string) int {
	if o.bypass {
		h := xxhash.ChecksumString32S(name, hashSeed)
		return int(h) % o.worldSize
	}
	h := xxhash.ChecksumString64S(name, hashSeed)
	i := sort.Search(len(o.ring), func(i int) bool { return o.ring[i].hash >= h })
	if i == len(o.ring) {
		i = 0 // wrap to the smallest token
	}
	return o.ring[i].rank
}

// WorldSize returns the world size this oracle was built for.
func (o *Oracle) WorldSize() int { return o.worldSize }
