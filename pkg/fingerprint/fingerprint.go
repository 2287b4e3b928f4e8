// Copyright 2025 CKSEARCH Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fingerprint derives the stable device identifier the licence
// gateway keys usage on.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"os/user"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// DeviceInfo is the metadata sent alongside the fingerprint.
type DeviceInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Username string `json:"username,omitempty"`
}

// Generate returns a sha256 hex fingerprint over the machine's stable
// identifiers. When none are readable (containers, locked-down hosts) a
// random UUID keeps the licence client functional; such fingerprints do
// not survive restarts.
func Generate() string {
	parts := []string{
		firstMAC(),
		hostname(),
		osUsername(),
		machineID(),
	}
	combined := strings.Join(parts, "|")
	if strings.Trim(combined, "|") == "" {
		combined = uuid.NewString()
	}
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// Info collects the device metadata for the validate call.
func Info() DeviceInfo {
	return DeviceInfo{
		Hostname: hostname(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Username: osUsername(),
	}
}

func firstMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String()
	}
	return ""
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

func osUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

func machineID() string {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if raw, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(raw))
		}
	}
	return ""
}
