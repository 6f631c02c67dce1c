// Package config defines the bridge's runtime configuration, the "config
// init" template scaffolder, and (on Linux) systemd unit install/uninstall,
// adapted from the teacher's internal/cmd package.
package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LogConfig groups the logging flags under the "log." prefix, the same
// embed/prefix convention the teacher's kong structs use.
type LogConfig struct {
	Level   string `help:"Log level: trace, debug, info, warn, error." default:"info"`
	File    string `help:"Write logs to this file instead of stdout/stderr."`
	RawFile string `help:"Hex-dump every HID report crossing the gadget endpoint to this file."`
}

// RunConfig is the configuration for the "run" command: every flag
// SPEC_FULL.md section 6 names, loadable from JSON/YAML/TOML via
// kong.Configuration and overridable by flags or environment variables.
type RunConfig struct {
	Endpoint string `help:"Gadget HID endpoint device node." default:"/dev/hidg0"`

	MAC     string `help:"Controller MAC-like identity, 12 hex digits. Derived from --mac-seed or /etc/machine-id when empty."`
	MACSeed string `help:"Seed string used to derive --mac deterministically when --mac is empty."`

	TickMS int `help:"Streaming pacing interval in milliseconds." default:"15"`

	FirmwareMajor uint8 `help:"Reported firmware major version." default:"3"`
	FirmwareMinor uint8 `help:"Reported firmware minor version." default:"72"`

	IMUAccelSign string `help:"Comma-separated per-axis accelerometer sign, e.g. 1,-1,1." default:"1,1,1"`
	IMUGyroSign  string `help:"Comma-separated per-axis gyroscope sign, e.g. 1,-1,1." default:"1,1,1"`

	Log LogConfig `embed:"" prefix:"log."`

	Status bool `help:"Show a live terminal status line."`

	Config string `help:"Path to a config file (json/yaml/toml)."`
}

// ParseAxisSign parses a "X,Y,Z" string of +-1 values into the [3]int8
// AxisConfig expects. An empty string is treated as "1,1,1".
func ParseAxisSign(s string) ([3]int8, error) {
	if s == "" {
		return [3]int8{1, 1, 1}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]int8{}, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}
	var out [3]int8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return [3]int8{}, fmt.Errorf("invalid axis sign %q: %w", p, err)
		}
		if n != 1 && n != -1 {
			return [3]int8{}, fmt.Errorf("axis sign must be 1 or -1, got %d", n)
		}
		out[i] = int8(n)
	}
	return out, nil
}

// ResolveMAC returns the 6-byte controller identity: a parsed --mac when
// supplied, otherwise a SHA-256-derived identity seeded by --mac-seed or, if
// that's empty too, the contents of /etc/machine-id. This resolves
// spec.md's MAC-like-identifier open question without requiring the
// operator to invent one by hand.
func ResolveMAC(mac, seed string) ([6]byte, error) {
	if mac != "" {
		return parseMACHex(mac)
	}

	if seed == "" {
		data, err := os.ReadFile("/etc/machine-id")
		if err != nil {
			return [6]byte{}, fmt.Errorf("derive mac: read /etc/machine-id: %w", err)
		}
		seed = strings.TrimSpace(string(data))
	}

	sum := sha256.Sum256([]byte(seed))
	var out [6]byte
	copy(out[:], sum[:6])
	// Set the locally-administered bit and clear the multicast bit, matching
	// the convention real vendor-assigned MACs use to signal "not a real
	// IEEE allocation".
	out[0] = (out[0] | 0x02) &^ 0x01
	return out, nil
}

func parseMACHex(s string) ([6]byte, error) {
	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 12 {
		return [6]byte{}, fmt.Errorf("mac must be 12 hex digits, got %q", s)
	}
	var out [6]byte
	for i := 0; i < 6; i++ {
		var b uint64
		if _, err := fmt.Sscanf(s[i*2:i*2+2], "%02x", &b); err != nil {
			return [6]byte{}, fmt.Errorf("invalid mac hex %q: %w", s, err)
		}
		out[i] = byte(b)
	}
	return out, nil
}
