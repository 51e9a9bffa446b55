package channel

import (
	"errors"
	"net"
	"sync"

	"github.com/gopacket/gopacket"
)

// pairedDatalink is a loopback medium connecting exactly two Channels:
// frames written by one side are delivered to the other's read queue, the
// way two peers on the same broadcast segment would see each other's
// traffic (but, as on a real NIC, not their own).
type pairedDatalink struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  [][]byte
	peer   *pairedDatalink
	closed bool
}

func newPairedDatalinks() (*pairedDatalink, *pairedDatalink) {
	a := &pairedDatalink{}
	b := &pairedDatalink{}
	a.cond = sync.NewCond(&a.mu)
	b.cond = sync.NewCond(&b.mu)
	a.peer = b
	b.peer = a
	return a, b
}

func (p *pairedDatalink) WritePacketData(data []byte) error {
	peer := p.peer
	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed {
		return nil
	}
	peer.queue = append(peer.queue, append([]byte(nil), data...))
	peer.cond.Signal()
	return nil
}

func (p *pairedDatalink) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return nil, gopacket.CaptureInfo{}, errLoopbackClosed
	}
	frame := p.queue[0]
	p.queue = p.queue[1:]
	return frame, gopacket.CaptureInfo{}, nil
}

func (p *pairedDatalink) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cond.Broadcast()
}

var errLoopbackClosed = errors.New("loopback datalink closed")

// NewLoopbackPair returns two Channels wired directly to each other,
// standing in for two peers on the same broadcast Ethernet segment
// without requiring a real interface or elevated privileges. Used by
// pkg/session's scenario tests.
func NewLoopbackPair(nameA string, macA net.HardwareAddr, nameB string, macB net.HardwareAddr) (*Channel, *Channel) {
	linkA, linkB := newPairedDatalinks()
	return newChannel(nameA, macA, linkA), newChannel(nameB, macB, linkB)
}
