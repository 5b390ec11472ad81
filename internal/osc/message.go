// Package osc carries player commands and notifications over OSC/UDP.
package osc

import (
	"fmt"

	goosc "github.com/hypebeast/go-osc/osc"

	perrors "github.com/tessro/slotplayer/internal/errors"
)

// Message is a decoded inbound OSC message with positional, untyped arguments.
type Message struct {
	Address string
	Args    []any
}

// NewMessage creates a message from an address and arguments.
func NewMessage(address string, args ...any) Message {
	return Message{Address: address, Args: args}
}

// FromOSC converts a wire message.
func FromOSC(m *goosc.Message) Message {
	args := make([]any, len(m.Arguments))
	copy(args, m.Arguments)
	return Message{Address: m.Address, Args: args}
}

// Len returns the number of arguments.
func (m Message) Len() int {
	return len(m.Args)
}

func (m Message) arg(i int) (any, error) {
	if i < 0 || i >= len(m.Args) {
		return nil, fmt.Errorf("%s: argument %d of %d: %w", m.Address, i, len(m.Args), perrors.ErrArityMismatch)
	}
	return m.Args[i], nil
}

// IntAt returns argument i as an integer. Floats are truncated.
func (m Message) IntAt(i int) (int, error) {
	v, err := m.arg(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float32:
		return int(n), nil
	case float64:
		return int(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%s: argument %d is %T, want int: %w", m.Address, i, v, perrors.ErrBadArgument)
}

// FloatAt returns argument i as a float.
func (m Message) FloatAt(i int) (float64, error) {
	v, err := m.arg(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%s: argument %d is %T, want float: %w", m.Address, i, v, perrors.ErrBadArgument)
}

// StringAt returns argument i as a string.
func (m Message) StringAt(i int) (string, error) {
	v, err := m.arg(i)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", fmt.Errorf("%s: argument %d is %T, want string: %w", m.Address, i, v, perrors.ErrBadArgument)
}

// BoolAt returns argument i as a flag: non-zero integers are true.
func (m Message) BoolAt(i int) (bool, error) {
	if v, err := m.arg(i); err == nil {
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	n, err := m.IntAt(i)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// toOSC builds a wire message. Go ints and float64s are narrowed to the
// 32-bit OSC types.
func toOSC(address string, args []any) *goosc.Message {
	msg := goosc.NewMessage(address)
	for _, a := range args {
		switch v := a.(type) {
		case int:
			msg.Append(int32(v))
		case float64:
			msg.Append(float32(v))
		default:
			msg.Append(v)
		}
	}
	return msg
}
