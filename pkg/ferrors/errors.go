// Package ferrors defines the closed set of error kinds that the wire,
// channel, and session layers can surface, mirroring the error taxonomy of
// the original implementation (see original_source/src/errors.rs).
//
// Each kind is a package-level sentinel so callers can compare with
// errors.Is; wrapping with fmt.Errorf("...: %w", ErrX) is used throughout
// the codebase to attach context without losing the sentinel identity.
package ferrors

import "errors"

var (
	// ErrInvalidChannelType is returned when the datalink handed back a
	// non-Ethernet pair. Fatal at startup.
	ErrInvalidChannelType = errors.New("invalid channel type provided")

	// ErrChannelError wraps an OS failure to bind a raw socket. Fatal at
	// startup.
	ErrChannelError = errors.New("an error occurred acquiring the channel")

	// ErrFileTooLarge is returned when a logical payload would require
	// more than 65535 chunks to send.
	ErrFileTooLarge = errors.New("the provided file is too large to reliably send")

	// ErrPacketTooLarge is returned when a single chunk body would exceed
	// the maximum application-body length. Indicates an internal bug: the
	// chunker must never produce a slice larger than CHUNK_MAX.
	ErrPacketTooLarge = errors.New("the provided packet is too large to send")

	// ErrFailedToSendArp is returned when a raw send fails partway through
	// a chunked transmission. The remaining chunks of that payload are
	// abandoned.
	ErrFailedToSendArp = errors.New("unable to send ARP packet over the wire")

	// ErrFailedToSerializeArp is returned when the outgoing frame buffer
	// could not be constructed.
	ErrFailedToSerializeArp = errors.New("unable to serialize ARP packet")

	// ErrFailedToDeserializeArp is returned when a fully-reassembled
	// payload fails to decode (e.g. corrupt LZ4 data).
	ErrFailedToDeserializeArp = errors.New("unable to deserialize ARP packet")

	// ErrUnableToGenerateHash is returned when FileHash computation
	// refuses its input.
	ErrUnableToGenerateHash = errors.New("unable to generate file hash")

	// ErrInvalidDestinationPath is returned when a user-supplied storage
	// path does not parse, or is not an existing directory.
	ErrInvalidDestinationPath = errors.New("invalid path to save files")
)
