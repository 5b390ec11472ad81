package osc

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const defaultHost = "127.0.0.1"

// Endpoint is a remote OSC destination.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseEndpoint parses "host:port" or a bare "port" (host defaults to
// 127.0.0.1). Ports below 1024 or at 65535 are rejected.
func ParseEndpoint(s string) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Endpoint{}, fmt.Errorf("empty address")
	}

	host, portStr := defaultHost, s
	if strings.Contains(s, ":") {
		h, p, err := net.SplitHostPort(s)
		if err != nil {
			return Endpoint{}, fmt.Errorf("parse address %q: %w", s, err)
		}
		host, portStr = h, p
		if host == "" {
			host = defaultHost
		}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse port %q: %w", portStr, err)
	}
	if port < 1024 || port >= 65535 {
		return Endpoint{}, fmt.Errorf("port out of range: %d", port)
	}

	return Endpoint{Host: host, Port: port}, nil
}
