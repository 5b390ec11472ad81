package osc

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/rs/zerolog"
)

const (
	maxPacketSize    = 65507
	defaultQueueSize = 256

	// "#bundle\x00" followed by an 8 byte time tag.
	bundleHeaderSize = 16
)

var bundleTag = []byte("#bundle\x00")

// Receiver listens for OSC packets on a UDP socket and queues the decoded
// messages in arrival order. Serve is the only producer; the player's tick
// loop is the only consumer.
type Receiver struct {
	conn  net.PacketConn
	queue chan Message
	log   zerolog.Logger

	received atomic.Uint64
	invalid  atomic.Uint64
}

// Listen opens a UDP socket on addr, e.g. ":30003".
func Listen(addr string, queueSize int, log zerolog.Logger) (*Receiver, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen udp %s: %w", addr, err)
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Receiver{
		conn:  conn,
		queue: make(chan Message, queueSize),
		log:   log.With().Str("component", "osc-receiver").Logger(),
	}, nil
}

// Addr returns the local address of the socket.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Port returns the local UDP port.
func (r *Receiver) Port() int {
	if a, ok := r.conn.LocalAddr().(*net.UDPAddr); ok {
		return a.Port
	}
	return 0
}

// Messages returns the queue of decoded messages. It is closed when Serve returns.
func (r *Receiver) Messages() <-chan Message {
	return r.queue
}

// Received returns the number of messages queued so far.
func (r *Receiver) Received() uint64 {
	return r.received.Load()
}

// Serve reads packets until ctx is cancelled or the socket is closed.
func (r *Receiver) Serve(ctx context.Context) error {
	defer close(r.queue)

	stop := context.AfterFunc(ctx, func() {
		_ = r.conn.Close()
	})
	defer stop()

	buf := make([]byte, maxPacketSize)
	for {
		n, from, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			r.log.Warn().Err(err).Msg("read failed")
			continue
		}

		msgs, err := decodePacket(buf[:n])
		if err != nil {
			r.invalid.Add(1)
			r.log.Warn().Err(err).Str("from", from.String()).Msg("could not decode packet")
			continue
		}

		for _, msg := range msgs {
			select {
			case r.queue <- FromOSC(msg):
				r.received.Add(1)
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Close closes the socket.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

// decodePacket returns the messages of a packet in wire order. Bundle
// elements are walked here because goosc.Bundle keeps messages and nested
// bundles in separate slices; each message is still decoded by go-osc.
func decodePacket(data []byte) ([]*goosc.Message, error) {
	if !bytes.HasPrefix(data, bundleTag) {
		p, err := goosc.ParsePacket(string(data))
		if err != nil {
			return nil, err
		}
		msg, ok := p.(*goosc.Message)
		if !ok {
			return nil, fmt.Errorf("unexpected packet %T", p)
		}
		return []*goosc.Message{msg}, nil
	}

	if len(data) < bundleHeaderSize {
		return nil, errors.New("bundle header truncated")
	}
	var msgs []*goosc.Message
	for rest := data[bundleHeaderSize:]; len(rest) > 0; {
		if len(rest) < 4 {
			return nil, errors.New("bundle element size truncated")
		}
		size := binary.BigEndian.Uint32(rest)
		rest = rest[4:]
		if size == 0 || uint64(size) > uint64(len(rest)) {
			return nil, fmt.Errorf("bundle element size %d out of range", size)
		}
		inner, err := decodePacket(rest[:size])
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, inner...)
		rest = rest[size:]
	}
	return msgs, nil
}
