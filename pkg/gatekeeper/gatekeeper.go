// SPDX-License-Identifier: GPL-2.0-or-later

// Package gatekeeper enforces per-connection message ordering and wraps
// the inbound/outbound channel pair every state machine frame uses to
// talk to its one remote.
package gatekeeper

import "gcast/pkg/front"

// Gatekeeper holds the ordering state for one connection: the next
// inbound id it will accept, and the screen it last sent, for replaying
// on SendStatus.
type Gatekeeper struct {
	nextAcceptedID uint64
	lastSent       front.State
}

// NewGatekeeper returns a Gatekeeper starting at id 0 with no screen yet
// sent.
func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{lastSent: front.None}
}

// ShouldAccept reports whether id is the next expected id or newer,
// advancing the expectation past it if so.
func (g *Gatekeeper) ShouldAccept(id uint64) bool {
	if id < g.nextAcceptedID {
		return false
	}
	g.nextAcceptedID = id + 1
	return true
}

// LastSent returns the most recently sent screen.
func (g *Gatekeeper) LastSent() front.State {
	return g.lastSent
}

// SetLastSent records f as the most recently sent screen.
func (g *Gatekeeper) SetLastSent(f front.State) {
	g.lastSent = f
}
