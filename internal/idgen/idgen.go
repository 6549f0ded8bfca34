// Package idgen draws random identifiers for new ledger rows.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/rongwang/stonks/internal/models"
)

// Generator produces identifiers over the full unsigned 64-bit range.
type Generator interface {
	NewID() models.ID
}

// RandomGenerator reads ids from a randomness source. The zero value reads
// from crypto/rand.
type RandomGenerator struct {
	mu  sync.Mutex
	src io.Reader
}

// New returns a generator reading from src, or from crypto/rand when src is nil.
func New(src io.Reader) *RandomGenerator {
	return &RandomGenerator{src: src}
}

// NewID panics if the source fails: a broken randomness source is fatal.
func (g *RandomGenerator) NewID() models.ID {
	var buf [8]byte
	g.mu.Lock()
	src := g.src
	if src == nil {
		src = rand.Reader
	}
	_, err := io.ReadFull(src, buf[:])
	g.mu.Unlock()
	if err != nil {
		panic(fmt.Sprintf("idgen: randomness source failed: %v", err))
	}
	return models.ID(binary.BigEndian.Uint64(buf[:]))
}
