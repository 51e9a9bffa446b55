// Package channel owns all raw network I/O: binding a datalink handle,
// chunking outgoing payloads into frames, running the listener goroutine
// that reassembles incoming frames back into payloads, and exposing the
// bounded frame queue that pkg/session drains from.
package channel

import (
	"net"
	"os"

	"github.com/google/uuid"
	"github.com/jrdwe/floodfile/internal/logger"
	metricsprom "github.com/jrdwe/floodfile/internal/metrics/prometheus"
	"github.com/jrdwe/floodfile/pkg/ferrors"
	"github.com/jrdwe/floodfile/pkg/wire"
)

func opcodeLabel(opcode wire.Opcode) string {
	switch opcode {
	case wire.OpcodeFile:
		return "file"
	case wire.OpcodeAdvertise:
		return "advertise"
	case wire.OpcodeDownloadRequest:
		return "download_request"
	default:
		return "unknown"
	}
}

// Received is one fully reassembled incoming payload, handed to the
// session loop for dispatch.
type Received struct {
	Opcode wire.Opcode
	Data   []byte
}

// Channel binds one network interface and owns the goroutine that listens
// on it. It is not safe for concurrent Send calls from multiple
// goroutines; pkg/session is its only caller and drives it single-threaded.
type Channel struct {
	interfaceName string
	hardwareAddr  net.HardwareAddr
	storagePath   string
	link          datalink

	reassembler *reassembler
	incoming    chan Received
	done        chan struct{}

	metrics *metricsprom.ChannelMetrics
}

// Open binds a live capture/injection handle on the named interface and
// starts its listener goroutine.
func Open(interfaceName string, hardwareAddr net.HardwareAddr) (*Channel, error) {
	link, err := openPcapDatalink(interfaceName)
	if err != nil {
		return nil, err
	}
	return newChannel(interfaceName, hardwareAddr, link), nil
}

// newChannel wires an already-open datalink into a Channel. Split out from
// Open so tests can inject a fake datalink without touching pcap.
func newChannel(interfaceName string, hardwareAddr net.HardwareAddr, link datalink) *Channel {
	c := &Channel{
		interfaceName: interfaceName,
		hardwareAddr:  hardwareAddr,
		storagePath:   os.TempDir(),
		link:          link,
		reassembler:   newReassembler(),
		incoming:      make(chan Received, bufferedFrames),
		done:          make(chan struct{}),
		metrics:       metricsprom.NewChannelMetrics(interfaceName),
	}
	go c.listen()
	return c
}

// InterfaceName reports the bound interface's name.
func (c *Channel) InterfaceName() string { return c.interfaceName }

// GetPath returns the directory completed downloads are written to.
func (c *Channel) GetPath() string { return c.storagePath }

// SetPath changes the storage directory, rejecting anything that isn't an
// existing directory.
func (c *Channel) SetPath(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ferrors.ErrInvalidDestinationPath
	}
	c.storagePath = dir
	return nil
}

// Incoming is the queue the session loop polls for reassembled payloads.
func (c *Channel) Incoming() <-chan Received { return c.incoming }

// Close stops the listener goroutine and releases the datalink handle.
func (c *Channel) Close() {
	close(c.done)
	c.link.Close()
}

// Send chunks data (an already-serialized Payload, per pkg/payload) into
// as many frames as needed and transmits each in turn. A fresh random Key
// groups the chunks of this call; ErrFileTooLarge is returned before any
// frame is sent if data would need more than 65535 chunks.
func (c *Channel) Send(opcode wire.Opcode, data []byte) error {
	chunks := chunkData(data)
	if len(chunks) > 0xFFFF {
		return ferrors.ErrFileTooLarge
	}

	key := newKey()
	total := uint16(len(chunks))
	for offset, chunkBytes := range chunks {
		frame, err := wire.EncodeFrame(c.hardwareAddr, wire.Chunk{
			Opcode: opcode,
			Offset: uint16(offset),
			Total:  total,
			Key:    key,
			Data:   chunkBytes,
		})
		if err != nil {
			return err
		}
		if err := c.link.WritePacketData(frame); err != nil {
			return ferrors.ErrFailedToSendArp
		}
		c.metrics.FrameSent(c.interfaceName, opcodeLabel(opcode))
	}
	return nil
}

// chunkData splits data into ChunkMax-sized slices. An empty payload
// still produces exactly one (empty) chunk, so zero-length advertisements
// and the like round-trip correctly.
func chunkData(data []byte) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for len(data) > 0 {
		n := wire.ChunkMax
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func newKey() wire.Key {
	id := uuid.New()
	var key wire.Key
	copy(key[:], id[:wire.KeySize])
	return key
}

// listen runs for the lifetime of the Channel, reading raw frames off the
// datalink, decoding and reassembling them, and forwarding completed
// payloads to Incoming. Frames that aren't ours (DecodeFrame's ok==false)
// are silently discarded, as are reads that would block the select past
// Close.
func (c *Channel) listen() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		raw, _, err := c.link.ReadPacketData()
		if err != nil {
			continue
		}

		chunk, ok, err := wire.DecodeFrame(raw)
		if err != nil {
			logger.Debug("dropping malformed frame", "interface", c.interfaceName, "error", err)
			c.metrics.FrameDropped(c.interfaceName, "malformed")
			continue
		}
		if !ok {
			c.metrics.FrameDropped(c.interfaceName, "not_ours")
			continue
		}

		data, opcode, done := c.reassembler.Accept(chunk)
		c.metrics.SetReassemblyBuckets(c.interfaceName, c.reassembler.ActiveCount())
		if !done {
			continue
		}

		select {
		case c.incoming <- Received{Opcode: opcode, Data: data}:
			c.metrics.FrameReceived(c.interfaceName, opcodeLabel(opcode))
		default:
			logger.Debug("incoming queue full, dropping reassembled payload", "interface", c.interfaceName)
			c.metrics.FrameDropped(c.interfaceName, "queue_full")
		}
	}
}
