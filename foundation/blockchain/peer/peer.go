// Package peer maintains the set of known peer hosts a future transport
// layer would sync blocks against. It carries no network code of its own.
package peer

import "sync"

// Peer identifies a node by host address.
type Peer struct {
	Host string
}

// New constructs a Peer value.
func New(host string) Peer {
	return Peer{Host: host}
}

// Match reports whether host names this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// Set maintains the collection of known peer hosts.
type Set struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewSet constructs an empty peer set.
func NewSet() *Set {
	return &Set{
		set: make(map[Peer]struct{}),
	}
}

// Add adds peer to the set, reporting whether it was newly added.
func (s *Set) Add(peer Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.set[peer]; exists {
		return false
	}
	s.set[peer] = struct{}{}
	return true
}

// Remove drops peer from the set.
func (s *Set) Remove(peer Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.set, peer)
}

// Copy returns the known peers other than host.
func (s *Set) Copy(host string) []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var peers []Peer
	for peer := range s.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	return peers
}
