// Package session implements the single-threaded command/event loop that
// owns a Channel and the in-memory view of locally- and remotely-shared
// files. It is the only component that mutates session state, so none of
// that state needs locking.
package session

import (
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/jrdwe/floodfile/internal/logger"
	"github.com/jrdwe/floodfile/pkg/channel"
	"github.com/jrdwe/floodfile/pkg/ferrors"
	"github.com/jrdwe/floodfile/pkg/payload"
	"github.com/jrdwe/floodfile/pkg/wire"
)

// pollInterval is how long the loop sleeps when both its input queues are
// empty, avoiding a busy spin while still being responsive.
const pollInterval = 10 * time.Millisecond

const commandQueueSize = 256
const eventQueueSize = 256

// Command is one request from the UI to the session loop.
type Command interface{ isCommand() }

// AdvertiseFile asks the session to announce path as locally shared.
type AdvertiseFile struct{ Path string }

// RequestFile asks the session to request the file advertised at path.
type RequestFile struct{ Path string }

// ChangeInterface rebinds the session onto a different network interface.
type ChangeInterface struct{ Name string }

// UpdateLocalPath changes the directory completed downloads are saved to.
type UpdateLocalPath struct{ Path string }

func (AdvertiseFile) isCommand()   {}
func (RequestFile) isCommand()     {}
func (ChangeInterface) isCommand() {}
func (UpdateLocalPath) isCommand() {}

// Event is one notification the session loop emits to the UI.
type Event interface{ isEvent() }

// NewFile reports that a remote peer is advertising a file.
type NewFile struct{ Path string }

// AlertUser reports a human-readable status or error message.
type AlertUser struct{ Text string }

func (NewFile) isEvent()   {}
func (AlertUser) isEvent() {}

// InterfaceOpener binds a new Channel on the named interface. Production
// code satisfies this with channel.Open plus an interface lookup; tests
// substitute a fake so ChangeInterface can be exercised without pcap.
type InterfaceOpener func(name string) (*channel.Channel, error)

// Session owns a Channel and dispatches commands/incoming payloads on a
// single goroutine. All exported methods other than Run are safe to call
// from any goroutine: they only enqueue onto the command channel.
type Session struct {
	commands chan Command
	events   chan Event
	done     chan struct{}

	openInterface InterfaceOpener

	ch *channel.Channel

	shared     map[payload.FileHash]string // remote path we could download
	sharing    map[payload.FileHash]string // local path we advertise
	requested  map[payload.FileHash]struct{}
}

// New starts a session bound to an already-open Channel. openInterface is
// used only by ChangeInterface to rebind onto a different one.
func New(ch *channel.Channel, openInterface InterfaceOpener) *Session {
	s := &Session{
		commands:      make(chan Command, commandQueueSize),
		events:        make(chan Event, eventQueueSize),
		done:          make(chan struct{}),
		openInterface: openInterface,
		ch:            ch,
		shared:        make(map[payload.FileHash]string),
		sharing:       make(map[payload.FileHash]string),
		requested:     make(map[payload.FileHash]struct{}),
	}
	return s
}

// Events is the queue the UI drains for notifications.
func (s *Session) Events() <-chan Event { return s.events }

// Send enqueues a command for the session loop to process. Never blocks
// past the (generously sized) command buffer.
func (s *Session) Send(cmd Command) {
	select {
	case s.commands <- cmd:
	default:
		logger.Warn("command queue full, dropping command")
	}
}

// Close stops the Run loop and its Channel.
func (s *Session) Close() {
	close(s.done)
}

// Run is the session loop. It blocks until Close is called and should be
// run on its own goroutine.
func (s *Session) Run() {
	for {
		select {
		case <-s.done:
			s.ch.Close()
			return
		default:
		}

		didWork := s.drainCommands()
		if s.pollChannel() {
			didWork = true
		}

		if !didWork {
			time.Sleep(pollInterval)
		}
	}
}

func (s *Session) drainCommands() bool {
	didWork := false
	for {
		select {
		case cmd := <-s.commands:
			s.dispatchCommand(cmd)
			didWork = true
		default:
			return didWork
		}
	}
}

func (s *Session) pollChannel() bool {
	select {
	case received := <-s.ch.Incoming():
		s.dispatchPayload(received)
		return true
	default:
		return false
	}
}

func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
		logger.Warn("event queue full, dropping event")
	}
}

func (s *Session) dispatchCommand(cmd Command) {
	switch c := cmd.(type) {
	case AdvertiseFile:
		s.handleAdvertiseFile(c.Path)
	case RequestFile:
		s.handleRequestFile(c.Path)
	case ChangeInterface:
		s.handleChangeInterface(c.Name)
	case UpdateLocalPath:
		s.handleUpdateLocalPath(c.Path)
	}
}

func (s *Session) handleAdvertiseFile(path string) {
	hash, err := payload.ComputeFileHash(path)
	if err != nil {
		logger.Debug("failed to hash path for advertise", "path", path, "error", err)
		return
	}
	s.sharing[hash] = path

	body, err := payload.Serialize(payload.Advertise{Path: path})
	if err != nil {
		s.emit(AlertUser{Text: err.Error()})
		return
	}
	if err := s.ch.Send(wire.OpcodeAdvertise, body); err != nil {
		s.emit(AlertUser{Text: err.Error()})
	}
}

func (s *Session) handleRequestFile(path string) {
	hash, err := payload.ComputeFileHash(path)
	if err != nil {
		logger.Debug("failed to hash path for request", "path", path, "error", err)
		return
	}
	s.requested[hash] = struct{}{}

	body, err := payload.Serialize(payload.DownloadRequest{Hash: hash})
	if err != nil {
		s.emit(AlertUser{Text: err.Error()})
		return
	}
	if err := s.ch.Send(wire.OpcodeDownloadRequest, body); err != nil {
		s.emit(AlertUser{Text: err.Error()})
	}
}

func (s *Session) handleChangeInterface(name string) {
	if s.ch.InterfaceName() == name {
		return
	}

	newCh, err := s.openInterface(name)
	if err != nil {
		s.emit(AlertUser{Text: err.Error()})
		return
	}

	s.ch.Close()
	s.ch = newCh

	// Per spec.md §4.4: replacing the Channel resets every application
	// map, discarding in-flight requests along with the old listener.
	s.shared = make(map[payload.FileHash]string)
	s.sharing = make(map[payload.FileHash]string)
	s.requested = make(map[payload.FileHash]struct{})
}

func (s *Session) handleUpdateLocalPath(path string) {
	if err := s.ch.SetPath(path); err != nil {
		s.emit(AlertUser{Text: ferrors.ErrInvalidDestinationPath.Error()})
	}
}

func (s *Session) dispatchPayload(received channel.Received) {
	p, err := payload.Deserialize(received.Opcode, received.Data)
	if err != nil {
		logger.Debug("dropping undeserializable payload", "opcode", received.Opcode, "error", err)
		return
	}

	switch v := p.(type) {
	case payload.Advertise:
		s.handleIncomingAdvertise(v)
	case payload.DownloadRequest:
		s.handleIncomingDownloadRequest(v)
	case payload.File:
		s.handleIncomingFile(v)
	}
}

func (s *Session) handleIncomingAdvertise(a payload.Advertise) {
	hash, err := payload.ComputeFileHash(a.Path)
	if err != nil {
		return
	}

	if _, ok := s.shared[hash]; ok {
		return
	}
	if _, ok := s.sharing[hash]; ok {
		return
	}

	s.shared[hash] = a.Path
	s.emit(NewFile{Path: a.Path})
}

func (s *Session) handleIncomingDownloadRequest(r payload.DownloadRequest) {
	path, ok := s.sharing[r.Hash]
	if !ok {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("failed to read shared file for download request", "path", path, "error", err)
		return
	}

	body, err := payload.Serialize(payload.File{Hash: r.Hash, Data: data})
	if err != nil {
		s.emit(AlertUser{Text: err.Error()})
		return
	}
	if err := s.ch.Send(wire.OpcodeFile, body); err != nil {
		s.emit(AlertUser{Text: err.Error()})
	}
}

func (s *Session) handleIncomingFile(f payload.File) {
	if _, ok := s.requested[f.Hash]; !ok {
		return
	}
	delete(s.requested, f.Hash)

	remotePath, ok := s.shared[f.Hash]
	if !ok {
		return
	}

	dest := filepath.Join(s.ch.GetPath(), filepath.Base(remotePath))
	if err := os.WriteFile(dest, f.Data, 0o644); err != nil {
		s.emit(AlertUser{Text: err.Error()})
		return
	}
	s.emit(AlertUser{Text: "saved: " + dest})
}

// hardwareAddrForInterface is a small helper production InterfaceOpener
// implementations use to resolve the MAC address channel.Open needs from
// an interface name.
func hardwareAddrForInterface(name string) (net.HardwareAddr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, err
	}
	return iface.HardwareAddr, nil
}

// DefaultOpener is the production InterfaceOpener: it resolves name's MAC
// address and binds a live pcap Channel on it.
func DefaultOpener(name string) (*channel.Channel, error) {
	mac, err := hardwareAddrForInterface(name)
	if err != nil {
		return nil, err
	}
	return channel.Open(name, mac)
}
