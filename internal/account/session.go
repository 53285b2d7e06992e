package account

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"sponsorFlow/internal/model"
)

// Session owns the latest WalletStatus for one connection. Every connection
// change bumps an epoch; a resolution still in flight when the epoch moves is
// discarded rather than merged, so stale results are never served.
type Session struct {
	resolver *Resolver

	mu     sync.Mutex
	epoch  uint64
	status model.WalletStatus
}

// NewSession starts a session in the disconnected state.
func NewSession(resolver *Resolver) *Session {
	return &Session{resolver: resolver, status: model.Disconnected()}
}

// Connect re-resolves the capability for the given address and replaces the
// stored status wholesale. If another Connect or Disconnect happens while the
// resolution is in flight, its result wins and this one is dropped.
func (s *Session) Connect(ctx context.Context, address common.Address) model.WalletStatus {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	status := s.resolver.Resolve(ctx, &address)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return s.status
	}
	s.status = status
	return status
}

// Disconnect destroys the current status and invalidates in-flight resolutions.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.status = model.Disconnected()
}

// Status returns the latest known wallet status snapshot.
func (s *Session) Status() model.WalletStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
