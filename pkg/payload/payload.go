// Package payload implements the application-level datagrams floodfile
// exchanges: file advertisements, download requests, and file transfers.
//
// Payload is modeled as a small interface implemented by three exported
// structs and closed by its unexported serialize method, rather than a
// class hierarchy — a tagged sum type, per SPEC_FULL.md §3.
package payload

import (
	"fmt"

	"github.com/jrdwe/floodfile/pkg/ferrors"
	"github.com/jrdwe/floodfile/pkg/wire"
	"github.com/pierrec/lz4/v4"
)

// Payload is the immutable, tagged variant exchanged between peers.
type Payload interface {
	// Opcode identifies which concrete variant this is, matching the
	// opcode carried in every chunk of the logical payload.
	Opcode() wire.Opcode

	// serialize produces the opcode-specific byte encoding described in
	// SPEC_FULL.md §4.2. It never fails for Advertise/DownloadRequest;
	// File can fail if compression fails to allocate.
	serialize() ([]byte, error)
}

// File is a complete file transfer: the FileHash of its advertised path
// and its raw bytes.
type File struct {
	Hash FileHash
	Data []byte
}

func (File) Opcode() wire.Opcode { return wire.OpcodeFile }

func (f File) serialize() ([]byte, error) {
	bound := lz4.CompressBlockBound(len(f.Data))
	compressed := make([]byte, bound)
	n, err := lz4.CompressBlock(f.Data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("compress file payload: %w", ferrors.ErrFailedToSerializeArp)
	}

	// n == 0 means lz4 judged the input incompressible; pierrec's
	// convention is to fall back to storing it verbatim in that case.
	if n == 0 {
		compressed = f.Data
	} else {
		compressed = compressed[:n]
	}

	out := make([]byte, 0, HashSize+4+len(compressed))
	out = append(out, f.Hash[:]...)
	out = appendUint32LE(out, uint32(len(f.Data)))
	out = append(out, compressed...)
	return out, nil
}

// Advertise announces that the sender is willing to share the file at
// Path (interpreted by the receiver purely as a display name — there is
// no guarantee the path resolves on the receiver's filesystem).
type Advertise struct {
	Path string
}

func (Advertise) Opcode() wire.Opcode { return wire.OpcodeAdvertise }

func (a Advertise) serialize() ([]byte, error) {
	return []byte(a.Path), nil
}

// DownloadRequest asks the peer sharing Hash to transmit the file back.
type DownloadRequest struct {
	Hash FileHash
}

func (DownloadRequest) Opcode() wire.Opcode { return wire.OpcodeDownloadRequest }

func (d DownloadRequest) serialize() ([]byte, error) {
	out := make([]byte, HashSize)
	copy(out, d.Hash[:])
	return out, nil
}

// Serialize encodes p into the bytes that get chunked and sent over the
// wire (the inverse of Deserialize).
func Serialize(p Payload) ([]byte, error) {
	return p.serialize()
}

// Deserialize decodes bytes carried by chunks of the given opcode back
// into a Payload. It returns ferrors.ErrFailedToDeserializeArp for any
// structurally invalid input (too short, bad LZ4 stream, etc.).
func Deserialize(opcode wire.Opcode, data []byte) (Payload, error) {
	switch opcode {
	case wire.OpcodeFile:
		if len(data) < HashSize+4 {
			return nil, ferrors.ErrFailedToDeserializeArp
		}
		var hash FileHash
		copy(hash[:], data[:HashSize])

		decompressedLen := readUint32LE(data[HashSize : HashSize+4])
		compressed := data[HashSize+4:]

		out := make([]byte, decompressedLen)
		n, err := lz4.UncompressBlock(compressed, out)
		if err != nil {
			return nil, fmt.Errorf("decompress file payload: %w", ferrors.ErrFailedToDeserializeArp)
		}
		return File{Hash: hash, Data: out[:n]}, nil

	case wire.OpcodeAdvertise:
		return Advertise{Path: string(data)}, nil

	case wire.OpcodeDownloadRequest:
		if len(data) < HashSize {
			return nil, ferrors.ErrFailedToDeserializeArp
		}
		var hash FileHash
		copy(hash[:], data[:HashSize])
		return DownloadRequest{Hash: hash}, nil

	default:
		return nil, ferrors.ErrFailedToDeserializeArp
	}
}

func appendUint32LE(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func readUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
