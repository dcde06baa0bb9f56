package visca

import (
	"net"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Inquiry - CAM_VersionInq, answered by every VISCA over IP camera
var Inquiry = []byte{0x81, 0x09, 0x00, 0x02, 0xFF}

var DiscoveryPorts = []int{DefaultPort, 5678}

const DefaultWindow = 3 * time.Second

type Camera struct {
	IP    string `json:"ip"`
	Port  int    `json:"port"`
	Reply string `json:"reply,omitempty"`
}

type Discoverer struct {
	Broadcast net.IP
	Ports     []int
	Window    time.Duration
	Log       zerolog.Logger
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{
		Broadcast: net.IPv4bcast,
		Ports:     DiscoveryPorts,
		Window:    DefaultWindow,
		Log:       zerolog.Nop(),
	}
}

// Discover broadcasts Inquiry on every port and collects replies until the
// window ends. Each IP is reported once, with the port that answered first.
func (d *Discoverer) Discover() ([]Camera, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var sent int
	for _, port := range d.Ports {
		addr := &net.UDPAddr{IP: d.Broadcast, Port: port}
		if _, err = conn.WriteTo(Inquiry, addr); err != nil {
			d.Log.Debug().Err(err).Stringer("addr", addr).Msg("[visca] discovery")
			continue
		}
		sent++
	}
	if sent == 0 {
		return nil, err
	}

	if err = conn.SetReadDeadline(time.Now().Add(d.Window)); err != nil {
		return nil, err
	}

	found := map[string]Camera{}

	b := make([]byte, 1500)
	for {
		n, addr, err := conn.ReadFrom(b)
		if err != nil {
			break
		}

		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok {
			continue
		}

		ip := udpAddr.IP.String()
		if _, ok = found[ip]; ok {
			continue
		}

		found[ip] = Camera{IP: ip, Port: udpAddr.Port, Reply: FormatHex(b[:n])}
		d.Log.Debug().Str("ip", ip).Int("port", udpAddr.Port).Msg("[visca] found")
	}

	cameras := make([]Camera, 0, len(found))
	for _, camera := range found {
		cameras = append(cameras, camera)
	}
	sort.Slice(cameras, func(i, j int) bool {
		return cameras[i].IP < cameras[j].IP
	})

	return cameras, nil
}
