package jwtx

import (
	"crypto/ed25519"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet is the set of public keys access tokens are accepted from, by kid.
// The most recently added signer is the active one.
type KeySet struct {
	mu     sync.RWMutex
	keys   map[string]ed25519.PublicKey
	active string
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]ed25519.PublicKey)}
}

// AddSigner trusts the signer's public key and makes it the active key.
func (k *KeySet) AddSigner(s Signer) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys[s.KID()] = s.PublicKey()
	k.active = s.KID()
}

// PublicKey returns the key registered under kid.
func (k *KeySet) PublicKey(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	pub, ok := k.keys[kid]
	if !ok {
		return nil, ErrNoKey
	}
	return pub, nil
}

// Active returns the kid new tokens are signed with, or "" before any
// signer has been added.
func (k *KeySet) Active() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active
}
