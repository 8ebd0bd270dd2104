// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package auth decides which network origins may delete reports.
package auth

import (
	"github.com/mdhender/faultrpt/ipaddr"
	"github.com/mdhender/faultrpt/model"
)

// OriginPolicy authorizes deletes by requester address. Privileged
// addresses (loopback and the host's own interfaces) may delete any
// report; everyone else may delete only reports they uploaded.
type OriginPolicy struct {
	privileged map[string]bool
}

// NewOriginPolicy builds a policy whose privileged set is loopback plus
// the host's interface addresses.
func NewOriginPolicy() *OriginPolicy {
	p := &OriginPolicy{privileged: make(map[string]bool)}
	for _, addr := range []string{"127.0.0.1", "::1"} {
		p.privileged[addr] = true
	}
	for _, addr := range ipaddr.HostAddresses() {
		p.privileged[addr] = true
	}
	return p
}

// NewOriginPolicyWithPrivileged builds a policy with an explicit privileged
// set. Used by tests and by deployments behind a known admin host.
func NewOriginPolicyWithPrivileged(addrs []string) *OriginPolicy {
	p := &OriginPolicy{privileged: make(map[string]bool)}
	for _, addr := range addrs {
		if ip, ok := ipaddr.Normalize(addr); ok {
			p.privileged[ip] = true
		}
	}
	return p
}

// CanDelete reports whether requesterIP may delete r. A report with no
// recorded uploader address is deletable only from a privileged address.
func (p *OriginPolicy) CanDelete(requesterIP string, r *model.Report) bool {
	ip, ok := ipaddr.Normalize(requesterIP)
	if !ok {
		return false
	}
	if p.privileged[ip] {
		return true
	}
	if r.UploaderIP == nil {
		return false
	}
	uploaderIP, ok := ipaddr.Normalize(*r.UploaderIP)
	if !ok {
		return false
	}
	return ip == uploaderIP
}
