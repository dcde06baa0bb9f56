package visca

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const DefaultPort = 1259

// DefaultTimeout - wait for one reply datagram
const DefaultTimeout = 2 * time.Second

var (
	ErrTimeout = errors.New("visca: no reply")
	ErrPayload = errors.New("visca: bad hex payload")
)

// Channel sends raw VISCA over IP commands, one socket per command
type Channel struct {
	Timeout time.Duration
	Log     zerolog.Logger
}

func NewChannel() *Channel {
	return &Channel{Timeout: DefaultTimeout, Log: zerolog.Nop()}
}

// Send writes hexPayload ("81 01 06 04 FF" or "81010604FF") to host:port and
// returns the first reply. Port 0 means DefaultPort.
func (c *Channel) Send(host, hexPayload string, port int) ([]byte, error) {
	payload, err := ParseHex(hexPayload)
	if err != nil {
		return nil, err
	}

	if port == 0 {
		port = DefaultPort
	}
	address := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := net.Dial("udp", address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err = conn.SetDeadline(time.Now().Add(c.Timeout)); err != nil {
		return nil, err
	}

	if _, err = conn.Write(payload); err != nil {
		return nil, err
	}

	c.Log.Trace().Str("addr", address).Hex("payload", payload).Msg("[visca] send")

	b := make([]byte, 1500)
	n, err := conn.Read(b)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, fmt.Errorf("%w from %s", ErrTimeout, address)
		}
		return nil, err
	}

	c.Log.Trace().Str("addr", address).Hex("reply", b[:n]).Msg("[visca] recv")

	return b[:n], nil
}

// ParseHex accepts hex with optional spaces, colons or 0x prefixes
func ParseHex(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '\t', '-':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrPayload)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayload, err)
	}
	return b, nil
}

// FormatHex - "90 50 ff"
func FormatHex(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString([]byte{v}))
	}
	return sb.String()
}
