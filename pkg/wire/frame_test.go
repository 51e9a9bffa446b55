package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMAC() net.HardwareAddr {
	return net.HardwareAddr{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
}

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	chunk := Chunk{
		Opcode: OpcodeAdvertise,
		Offset: 1,
		Total:  3,
		Key:    Key{1, 2, 3, 4, 5, 6, 7, 8},
		Data:   []byte("hello chunk"),
	}

	frame, err := EncodeFrame(testMAC(), chunk)
	require.NoError(t, err)

	got, ok, err := DecodeFrame(frame)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, chunk, got)
}

func TestEncodeFrameMaxChunkBudget(t *testing.T) {
	chunk := Chunk{Opcode: OpcodeFile, Offset: 0, Total: 1, Data: make([]byte, ChunkMax)}

	frame, err := EncodeFrame(testMAC(), chunk)
	require.NoError(t, err)

	// L (the application-body length) must always fit in a single byte.
	arpBody := frame[ethernetHeaderSize:]
	l := int(arpBody[5])
	assert.LessOrEqual(t, l, 255)
	assert.Equal(t, fixedHeaderSize+ChunkMax, l)
}

func TestEncodeFramePacketTooLarge(t *testing.T) {
	chunk := Chunk{Data: make([]byte, ChunkMax+1)}
	_, err := EncodeFrame(testMAC(), chunk)
	assert.Error(t, err)
}

func TestDecodeFrameDropsNonARP(t *testing.T) {
	chunk := Chunk{Opcode: OpcodeFile, Total: 1, Data: []byte("x")}
	frame, err := EncodeFrame(testMAC(), chunk)
	require.NoError(t, err)

	// Flip the ethertype away from ARP.
	frame[12], frame[13] = 0x08, 0x00

	_, ok, err := DecodeFrame(frame)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestDecodeFrameDropsMissingPreamble(t *testing.T) {
	chunk := Chunk{Opcode: OpcodeFile, Total: 1, Data: []byte("x")}
	frame, err := EncodeFrame(testMAC(), chunk)
	require.NoError(t, err)

	arpBody := frame[ethernetHeaderSize:]
	arpBody[14] = 'X' // corrupt the preamble's first byte

	_, ok, err := DecodeFrame(frame)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestDecodeFrameRejectsTruncatedFrame(t *testing.T) {
	_, ok, err := DecodeFrame([]byte{1, 2, 3})
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestChunkMaxDerivation(t *testing.T) {
	assert.Equal(t, 238, ChunkMax)
}
