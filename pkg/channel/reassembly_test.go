package channel

import (
	"testing"

	"github.com/jrdwe/floodfile/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReassemblerOutOfOrderAndDuplicate feeds chunks to the reassembler
// directly, bypassing any datalink, so it can drive orderings a FIFO
// transport never produces: out-of-order delivery and repeated offsets.
func TestReassemblerOutOfOrderAndDuplicate(t *testing.T) {
	key := wire.Key{1, 2, 3, 4, 5, 6, 7, 8}
	parts := [][]byte{[]byte("aaa"), []byte("bb"), []byte("c"), []byte("dddd")}
	total := uint16(len(parts))

	chunkAt := func(offset int) wire.Chunk {
		return wire.Chunk{
			Opcode: wire.OpcodeFile,
			Offset: uint16(offset),
			Total:  total,
			Key:    key,
			Data:   parts[offset],
		}
	}

	r := newReassembler()

	// Deliver out of order, plus duplicates of already-seen offsets
	// re-sent before the bucket completes. Neither should disturb the
	// final concatenation order, which must always follow Offset, not
	// arrival order.
	order := []int{3, 1, 1, 0, 0, 2}
	var data []byte
	var opcode wire.Opcode
	var done bool
	for i, offset := range order {
		data, opcode, done = r.Accept(chunkAt(offset))
		if i < len(order)-1 {
			require.False(t, done, "bucket completed early at step %d", i)
			require.Equal(t, 1, r.ActiveCount())
		}
	}

	require.True(t, done)
	assert.Equal(t, wire.OpcodeFile, opcode)
	assert.Equal(t, []byte("aaabbcdddd"), data)
	assert.Equal(t, 0, r.ActiveCount(), "completed bucket must be evicted")
}

// TestReassemblerDuplicateChunkIsNoOp asserts that re-delivering a chunk
// at an already-filled offset does not double count it toward total,
// and does not corrupt the stored slot data.
func TestReassemblerDuplicateChunkIsNoOp(t *testing.T) {
	key := wire.Key{9, 9, 9, 9, 9, 9, 9, 9}
	c0 := wire.Chunk{Opcode: wire.OpcodeAdvertise, Offset: 0, Total: 2, Key: key, Data: []byte("first")}
	c0Duplicate := wire.Chunk{Opcode: wire.OpcodeAdvertise, Offset: 0, Total: 2, Key: key, Data: []byte("SECOND")}
	c1 := wire.Chunk{Opcode: wire.OpcodeAdvertise, Offset: 1, Total: 2, Key: key, Data: []byte("tail")}

	r := newReassembler()

	_, _, done := r.Accept(c0)
	require.False(t, done)

	// A duplicate of offset 0 arrives before the bucket is complete. It
	// must not overwrite the original slot and must not be counted again.
	_, _, done = r.Accept(c0Duplicate)
	require.False(t, done)
	require.Equal(t, 1, r.ActiveCount())

	data, opcode, done := r.Accept(c1)
	require.True(t, done)
	assert.Equal(t, wire.OpcodeAdvertise, opcode)
	assert.Equal(t, []byte("firsttail"), data, "first delivery of offset 0 must win, not the duplicate")
}
