package symtable

import (
	"github.com/cespare/xxhash/v2"
)

const hashMultiplier = 65599

// capacities is the fixed growth sequence of bucket counts. Primes keep
// the modulo reduction from clustering keys that share common suffixes.
var capacities = [...]int{509, 1021, 2039, 4093, 8191, 16381, 32749, 65521}

// Capacities returns a copy of the bucket count sequence the table grows through.
func Capacities() []int {
	out := make([]int, len(capacities))
	copy(out, capacities[:])
	return out
}

// Hasher maps a key to a bucket index in [0, buckets).
type Hasher interface {
	Bucket(key string, buckets int) int
}

// HasherFunc adapts a plain function to the Hasher interface.
type HasherFunc func(key string, buckets int) int

func (f HasherFunc) Bucket(key string, buckets int) int {
	return f(key, buckets)
}

// MultiplicativeHasher folds every byte of the key into an accumulator
// with the multiplier 65599 and reduces the result mod the bucket count.
var MultiplicativeHasher Hasher = HasherFunc(Hash)

// XXHasher reduces the 64-bit xxHash of the key mod the bucket count.
var XXHasher Hasher = HasherFunc(func(key string, buckets int) int {
	return int(xxhash.Sum64String(key) % uint64(buckets))
})

// Hash returns the bucket index of key for a table with the given number
// of buckets.
func Hash(key string, buckets int) int {
	var h uint64
	for i := 0; i < len(key); i++ {
		h = h*hashMultiplier + uint64(key[i])
	}
	return int(h % uint64(buckets))
}
