package transport

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDevice = errors.New("transport: unknown device")
	ErrUnsupported   = errors.New("transport: unsupported on this platform")
	ErrNotTerminal   = errors.New("transport: not a terminal")
)

// DefaultBaud is the line rate used for serial devices.
const DefaultBaud = 115200

var deviceAliases = map[string]string{
	"usb":     "/dev/ttyUSB0",
	"serial":  "/dev/serial0",
	"arduino": "/dev/ttyACM0",
}

// ResolveDevice maps an alias or a /dev path to a device path.
func ResolveDevice(name string) (string, error) {
	name = strings.TrimSpace(name)
	if path, ok := deviceAliases[name]; ok {
		return path, nil
	}
	if strings.HasPrefix(name, "/dev/") && len(name) > len("/dev/") {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDevice, name)
}
