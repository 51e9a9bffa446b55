// Package wire implements the on-the-wire frame codec: encoding and
// decoding of the ARP-shaped carrier frame that smuggles floodfile's
// application datagrams across the local Ethernet broadcast domain.
//
// Every function here is a pure transformation over byte slices. There is
// no I/O and no goroutine state; pkg/channel is the only caller and owns
// all network access.
package wire

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/jrdwe/floodfile/pkg/ferrors"
)

// Ethernet/ARP constants for the carrier frame. These values make every
// frame look, at a glance, like a normal ARP request: ethertype 0x0806,
// ARP opcode 1, hardware type 1 (Ethernet), protocol type 0x0800 (IPv4).
const (
	EtherTypeARP = 0x0806

	hardwareTypeEthernet = 0x0001
	protocolTypeIPv4     = 0x0800
	arpOpcodeRequest     = 0x0001
	hardwareSize         = 0x06

	ethernetHeaderSize = 14 // dst MAC(6) + src MAC(6) + ethertype(2)
	macSize            = 6
)

// applicationPreamble identifies the application bytes smuggled inside the
// ARP body. Frames lacking it at the expected offset are not ours.
var applicationPreamble = [4]byte{'f', 'i', 'l', 'e'}

// Opcode identifies the kind of payload a chunk belongs to.
type Opcode byte

const (
	OpcodeFile            Opcode = 0
	OpcodeAdvertise       Opcode = 1
	OpcodeDownloadRequest Opcode = 2
)

// Fixed application header: preamble(4) + opcode(1) + offset(2) + total(2) + key(8).
const fixedHeaderSize = 4 + 1 + 2 + 2 + 8

// ChunkMax is the largest chunk data payload a single frame can carry.
// Derived, not hardcoded: the ARP body's application-length field is a
// single byte (L <= 255), so the fixed header leaves 255-fixedHeaderSize
// bytes for chunk data.
const ChunkMax = 255 - fixedHeaderSize

// KeySize is the length in bytes of the per-payload reassembly nonce.
const KeySize = 8

// Key is the random nonce that groups the chunks of one logical payload.
type Key [KeySize]byte

// Chunk is one fragment of a logical payload, ready to be embedded in a
// carrier frame or as decoded from one.
type Chunk struct {
	Opcode Opcode
	Offset uint16
	Total  uint16
	Key    Key
	Data   []byte
}

// applicationLength returns L, the total length of the application bytes
// for this chunk, including the fixed header.
func (c Chunk) applicationLength() int {
	return fixedHeaderSize + len(c.Data)
}

// encodeApplicationBytes serializes a Chunk into its L-byte application
// payload (the bytes that get duplicated into the ARP body).
func encodeApplicationBytes(c Chunk) ([]byte, error) {
	if len(c.Data) > ChunkMax {
		return nil, ferrors.ErrPacketTooLarge
	}

	l := c.applicationLength()
	buf := make([]byte, l)
	copy(buf[0:4], applicationPreamble[:])
	buf[4] = byte(c.Opcode)
	binary.LittleEndian.PutUint16(buf[5:7], c.Offset)
	binary.LittleEndian.PutUint16(buf[7:9], c.Total)
	copy(buf[9:17], c.Key[:])
	copy(buf[17:], c.Data)
	return buf, nil
}

// decodeApplicationBytes parses L raw application bytes (already sliced
// out of the ARP body) back into a Chunk. Callers must have already
// validated the preamble; this only parses the structural fields.
func decodeApplicationBytes(app []byte) (Chunk, error) {
	if len(app) < fixedHeaderSize {
		return Chunk{}, ferrors.ErrFailedToDeserializeArp
	}

	var c Chunk
	c.Opcode = Opcode(app[4])
	c.Offset = binary.LittleEndian.Uint16(app[5:7])
	c.Total = binary.LittleEndian.Uint16(app[7:9])
	copy(c.Key[:], app[9:17])
	c.Data = append([]byte(nil), app[17:]...)
	return c, nil
}

// EncodeFrame builds a complete broadcast Ethernet frame carrying chunk as
// its ARP-shaped payload. srcMAC is the sending interface's hardware
// address, written into both the Ethernet source and the ARP sender MAC.
func EncodeFrame(srcMAC net.HardwareAddr, chunk Chunk) ([]byte, error) {
	if len(srcMAC) != macSize {
		return nil, fmt.Errorf("encode frame: %w: source MAC must be %d bytes", ferrors.ErrFailedToSerializeArp, macSize)
	}

	app, err := encodeApplicationBytes(chunk)
	if err != nil {
		return nil, err
	}
	l := len(app)
	if l > 255 {
		return nil, ferrors.ErrPacketTooLarge
	}

	arpBody := make([]byte, 20+2*l)
	binary.BigEndian.PutUint16(arpBody[0:2], hardwareTypeEthernet)
	binary.BigEndian.PutUint16(arpBody[2:4], protocolTypeIPv4)
	arpBody[4] = hardwareSize
	arpBody[5] = byte(l)
	binary.BigEndian.PutUint16(arpBody[6:8], arpOpcodeRequest)
	copy(arpBody[8:14], srcMAC)
	copy(arpBody[14:14+l], app)
	// target MAC (14+l .. 20+l) is left zeroed per the wire format.
	copy(arpBody[20+l:20+2*l], app)

	frame := make([]byte, ethernetHeaderSize+len(arpBody))
	copy(frame[0:6], net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	copy(frame[6:12], srcMAC)
	binary.BigEndian.PutUint16(frame[12:14], EtherTypeARP)
	copy(frame[ethernetHeaderSize:], arpBody)

	return frame, nil
}

// DecodeFrame validates and parses a raw Ethernet frame.
//
// ok is false (err nil) when the frame simply isn't one of ours: wrong
// ethertype, wrong ARP opcode, missing preamble, or a declared length that
// overruns the frame. Per spec these cases are silently dropped, not
// reported as errors.
//
// err is non-nil only once the preamble and opcode checks have passed but
// the body is structurally malformed (e.g. truncated fixed header).
func DecodeFrame(frame []byte) (chunk Chunk, ok bool, err error) {
	if len(frame) < ethernetHeaderSize+20 {
		return Chunk{}, false, nil
	}
	if binary.BigEndian.Uint16(frame[12:14]) != EtherTypeARP {
		return Chunk{}, false, nil
	}

	arpBody := frame[ethernetHeaderSize:]
	if binary.BigEndian.Uint16(arpBody[6:8]) != arpOpcodeRequest {
		return Chunk{}, false, nil
	}

	l := int(arpBody[5])
	if 14+l > len(arpBody) {
		return Chunk{}, false, nil
	}
	app := arpBody[14 : 14+l]
	if len(app) < 4 || [4]byte(app[0:4]) != applicationPreamble {
		return Chunk{}, false, nil
	}

	c, err := decodeApplicationBytes(app)
	if err != nil {
		return Chunk{}, false, err
	}
	return c, true, nil
}
