package questsdk

import (
	"context"
	"sync"
)

// CredentialStore is the single source of truth for the token pair.
//
// Reads never fail: an absent token, or one the backing store could not
// read, is reported as "". Writes are last-writer-wins.
type CredentialStore interface {
	AccessToken(ctx context.Context) string
	RefreshToken(ctx context.Context) string
	SaveAccessToken(ctx context.Context, token string) error
	SaveRefreshToken(ctx context.Context, token string) error

	// Clear removes both tokens.
	Clear(ctx context.Context) error
}

// MemoryCredentials keeps the token pair in process memory.
type MemoryCredentials struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{}
}

func (m *MemoryCredentials) AccessToken(context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

func (m *MemoryCredentials) RefreshToken(context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh
}

func (m *MemoryCredentials) SaveAccessToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = token
	return nil
}

func (m *MemoryCredentials) SaveRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = token
	return nil
}

func (m *MemoryCredentials) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	return nil
}
