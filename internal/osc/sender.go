package osc

import (
	"fmt"

	goosc "github.com/hypebeast/go-osc/osc"
)

// Sender sends OSC messages to a fixed endpoint.
type Sender struct {
	client   *goosc.Client
	endpoint Endpoint
}

// NewSender creates a sender for the given endpoint.
func NewSender(ep Endpoint) *Sender {
	return &Sender{
		client:   goosc.NewClient(ep.Host, ep.Port),
		endpoint: ep,
	}
}

// Endpoint returns the destination of the sender.
func (s *Sender) Endpoint() Endpoint {
	return s.endpoint
}

// Send sends one message with the given arguments.
func (s *Sender) Send(address string, args ...any) error {
	if err := s.client.Send(toOSC(address, args)); err != nil {
		return fmt.Errorf("send %s to %s: %w", address, s.endpoint, err)
	}
	return nil
}
