package channel

import (
	"net"
	"sort"

	"github.com/gopacket/gopacket/pcap"
)

// Interface describes one candidate network interface usable as a
// floodfile channel: it must carry both a hardware address (to source
// frames from) and at least one IP address (used only as a heuristic for
// ranking "the interface most likely connected to a real LAN" first —
// floodfile itself never sends IP traffic).
type Interface struct {
	Name         string
	HardwareAddr net.HardwareAddr
	Addresses    []net.IP
}

// UsableInterfaces cross-references pcap's capture-capable device list
// against the standard library's interface table (the only source of MAC
// addresses pcap's device list doesn't reliably carry) and returns the
// interfaces that have both, sorted with the most IP addresses first: in
// practice this puts the machine's primary LAN interface at the top of any
// selection prompt.
func UsableInterfaces() ([]Interface, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return nil, err
	}

	hardwareAddrs := make(map[string]net.HardwareAddr)
	if ifaces, err := net.Interfaces(); err == nil {
		for _, iface := range ifaces {
			if len(iface.HardwareAddr) == 6 {
				hardwareAddrs[iface.Name] = iface.HardwareAddr
			}
		}
	}

	var usable []Interface
	for _, device := range devices {
		mac, ok := hardwareAddrs[device.Name]
		if !ok || len(device.Addresses) == 0 {
			continue
		}

		addrs := make([]net.IP, 0, len(device.Addresses))
		for _, a := range device.Addresses {
			addrs = append(addrs, a.IP)
		}

		usable = append(usable, Interface{
			Name:         device.Name,
			HardwareAddr: mac,
			Addresses:    addrs,
		})
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return len(usable[i].Addresses) > len(usable[j].Addresses)
	})

	return usable, nil
}
