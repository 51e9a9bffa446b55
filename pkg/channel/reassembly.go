package channel

import (
	"sync"

	"github.com/jrdwe/floodfile/pkg/wire"
)

// bucket accumulates the chunks of one logical payload, identified by its
// wire.Key. Slots start nil and are filled as chunks arrive in any order;
// the payload is complete once every slot up to total is non-nil.
//
// There is deliberately no timeout or eviction here: a payload whose
// sender never finishes leaves its bucket allocated forever. This mirrors
// the original implementation and is recorded as an accepted deficiency,
// not an oversight (see DESIGN.md and SPEC_FULL.md §9).
type bucket struct {
	opcode wire.Opcode
	total  uint16
	filled uint16
	slots  [][]byte
}

func newBucket(total uint16, opcode wire.Opcode) *bucket {
	return &bucket{
		opcode: opcode,
		total:  total,
		slots:  make([][]byte, total),
	}
}

// add stores chunk's data at its offset, returning true once every slot in
// the bucket has been filled (the payload is ready to reassemble).
func (b *bucket) add(chunk wire.Chunk) bool {
	if int(chunk.Offset) >= len(b.slots) {
		return false
	}
	if b.slots[chunk.Offset] == nil {
		b.slots[chunk.Offset] = chunk.Data
		b.filled++
	}
	return b.filled == b.total
}

// concat joins the bucket's slots in offset order into the original
// logical payload bytes.
func (b *bucket) concat() []byte {
	size := 0
	for _, s := range b.slots {
		size += len(s)
	}
	out := make([]byte, 0, size)
	for _, s := range b.slots {
		out = append(out, s...)
	}
	return out
}

// reassembler tracks in-flight buckets across all keys currently being
// received on a Channel. Safe for concurrent use: the listener goroutine
// is the only writer, but callers (tests, metrics) may read ActiveCount
// concurrently.
type reassembler struct {
	mu      sync.Mutex
	buckets map[wire.Key]*bucket
}

func newReassembler() *reassembler {
	return &reassembler{buckets: make(map[wire.Key]*bucket)}
}

// Accept folds one received chunk into its bucket, allocating the bucket
// on first sight of its key. When the chunk completes its payload, Accept
// returns the reassembled bytes, the payload's opcode, and true; the
// bucket is removed so its memory doesn't linger.
func (r *reassembler) Accept(chunk wire.Chunk) (data []byte, opcode wire.Opcode, done bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[chunk.Key]
	if !ok {
		b = newBucket(chunk.Total, chunk.Opcode)
		r.buckets[chunk.Key] = b
	}

	if b.add(chunk) {
		delete(r.buckets, chunk.Key)
		return b.concat(), b.opcode, true
	}
	return nil, 0, false
}

// ActiveCount reports how many payloads are currently mid-reassembly.
// Exposed for the reassembly-buckets-active gauge in internal/metrics.
func (r *reassembler) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}
