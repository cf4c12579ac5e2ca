package loop

import (
	"errors"
	"fmt"
	"strings"
)

// Device selects the rendering backend.
type Device int

const (
	CPU Device = iota + 1
	GPU
)

// DefaultDevice is used when no device argument is given.
const DefaultDevice = GPU

var ErrUnknownDevice = errors.New("unknown device")

func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	}
	return fmt.Sprintf("Device(%d)", int(d))
}

// ParseDevice parses "cpu" or "gpu". An empty string selects DefaultDevice.
func ParseDevice(s string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDevice, nil
	case "cpu":
		return CPU, nil
	case "gpu":
		return GPU, nil
	}
	return 0, fmt.Errorf("%w %q: expected cpu or gpu", ErrUnknownDevice, s)
}
