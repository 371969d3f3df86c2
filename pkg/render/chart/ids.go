package chart

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces document-unique identifiers for SVG definitions such
// as gradients. Two charts embedded in one page must never share an id, even
// when they share a colour.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDs generates random identifiers of the form "prefix-<uuid>".
type UUIDs struct{}

// NewID returns prefix followed by a random UUID.
func (UUIDs) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Sequence generates "prefix-1", "prefix-2", ... and is safe for concurrent
// use. Output rendered with a Sequence is byte-for-byte reproducible.
type Sequence struct {
	n atomic.Uint64
}

// NewID returns prefix followed by the next sequence number.
func (s *Sequence) NewID(prefix string) string {
	return prefix + "-" + strconv.FormatUint(s.n.Add(1), 10)
}
