package channel

import (
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcap"
	"github.com/jrdwe/floodfile/pkg/ferrors"
)

// datalink is the minimal raw-frame I/O surface Channel depends on. The
// production implementation wraps gopacket/pcap's *pcap.Handle; tests
// substitute an in-memory fake so reassembly and session logic can be
// exercised without a privileged network interface.
type datalink interface {
	WritePacketData(data []byte) error
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	Close()
}

const (
	snapLen        = 65535
	readTimeout    = 50 * time.Millisecond
	bufferedFrames = 1024
)

// openPcapDatalink binds a live capture handle on the named interface,
// promiscuous-off (our carrier frames are broadcast, so every host on the
// segment receives them without needing to see others' unicast traffic),
// with a BPF filter restricting capture to ARP frames (our carrier
// protocol) so the listener never wastes cycles decoding unrelated
// traffic.
func openPcapDatalink(interfaceName string) (datalink, error) {
	handle, err := pcap.OpenLive(interfaceName, snapLen, false, readTimeout)
	if err != nil {
		return nil, ferrors.ErrChannelError
	}
	if handle.LinkType() != layers.LinkTypeEthernet {
		handle.Close()
		return nil, ferrors.ErrInvalidChannelType
	}
	if err := handle.SetBPFFilter("arp"); err != nil {
		handle.Close()
		return nil, ferrors.ErrChannelError
	}
	return handle, nil
}
