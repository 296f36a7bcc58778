// Package id produces ULID strings (time-sortable identifiers).
//
// Time-sortable IDs let the engine replay its working orders in
// submission order just by sorting the keys.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator mints ULIDs whose timestamp and entropy come from an
// injectable clock and randomness source, so a caller with a seeded
// source and a logical clock gets fully pinned IDs. IDs from one
// generator are lexicographically increasing as long as its clock
// never runs backwards.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator builds a generator drawing entropy from src and
// timestamps from now. A nil src falls back to a crypto-seeded PRNG,
// a nil now to the wall clock.
func NewGenerator(src io.Reader, now func() time.Time) *Generator {
	if src == nil {
		src = seededSource()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing.
	return &Generator{entropy: ulid.Monotonic(src, 0), now: now}
}

// New returns the next ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		// Only possible if the clock runs backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

func seededSource() io.Reader {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

var defaultGen = NewGenerator(nil, nil)

// New returns a ULID string from the process-wide generator.
func New() string {
	return defaultGen.New()
}
