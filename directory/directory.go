// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package directory resolves uploader identity from a JSON user/IP map.
// The map is loaded once at startup; entries with unparseable addresses
// are skipped.
package directory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mdhender/faultrpt/ipaddr"
)

// Identity is the uploader identity attributed to a network address.
type Identity struct {
	User string `json:"user"`
	UID  int64  `json:"uid"`
	IP   string `json:"ip"`
}

// Map is an immutable lookup from normalized IP to identity.
type Map struct {
	byIP map[string]Identity
}

// Empty returns a map that resolves nothing.
func Empty() *Map {
	return &Map{byIP: make(map[string]Identity)}
}

// Load reads a user/IP map file. A missing file is not an error; it
// yields an empty map, matching a deployment with no directory configured.
func Load(path string) (*Map, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user ip map: %w", err)
	}
	return Parse(data)
}

// Parse builds a map from raw JSON: a list of identity entries keyed by
// their ip field.
func Parse(data []byte) (*Map, error) {
	var entries []Identity
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse user ip map: %w", err)
	}

	m := Empty()
	for _, entry := range entries {
		ip, ok := ipaddr.Normalize(entry.IP)
		if !ok {
			continue
		}
		entry.IP = ip
		m.byIP[ip] = entry
	}
	return m, nil
}

// Resolve returns the identity registered for the normalized address, or
// nil when the address is unknown.
func (m *Map) Resolve(ip string) *Identity {
	if m == nil {
		return nil
	}
	if identity, ok := m.byIP[ip]; ok {
		return &identity
	}
	return nil
}

// Len returns the number of registered identities.
func (m *Map) Len() int {
	return len(m.byIP)
}
