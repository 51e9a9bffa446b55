package payload

import "crypto/md5"

// HashSize is the length in bytes of a FileHash.
const HashSize = 16

// FileHash is the content-address identifier floodfile uses for a shared
// file. It is deliberately computed from the *advertised path string*, not
// the file's bytes: two peers that advertise the same path string collide
// even with different content, and two peers sharing the same bytes under
// different paths get unrelated hashes. This is a known quirk of the
// original design and is preserved here, not fixed (see DESIGN.md).
type FileHash [HashSize]byte

// ComputeFileHash derives a FileHash from an advertised path string. It is
// pure and deterministic: the same path string always yields the same
// hash, on any peer.
//
// The error return mirrors the original implementation's fallible hash
// computation; md5 never actually fails on a []byte input, so this always
// succeeds in practice, but callers (pkg/session) must still treat it as
// fallible per the error taxonomy (ferrors.ErrUnableToGenerateHash).
func ComputeFileHash(path string) (FileHash, error) {
	digest := md5.Sum([]byte(path))
	return FileHash(digest), nil
}
