// Package crypto encrypts sensitive columns (payout account numbers,
// wallet addresses) and derives blind indexes for uniqueness checks.
package crypto

import (
	"encoding/hex"
	"sort"

	"github.com/pkg/errors"

	"github.com/iliyamo/dantour/internal/config"
)

// KeyProvider hands out AES-256 keys by id.  The active key encrypts new
// values; older keys stay available so existing ciphertexts decrypt
// after a rotation.
type KeyProvider interface {
	ActiveKey() (id string, key []byte)
	Key(id string) ([]byte, bool)
}

// StaticKeys is a KeyProvider backed by keys loaded once at startup.
type StaticKeys struct {
	active string
	keys   map[string][]byte
}

// NewStaticKeys decodes the hex keys of cfg.  Every key must be 32 bytes
// and the active key id must be present.
func NewStaticKeys(cfg config.CryptoConfig) (*StaticKeys, error) {
	if len(cfg.Keys) == 0 {
		return nil, errors.New("crypto: no encryption keys configured")
	}
	keys := make(map[string][]byte, len(cfg.Keys))
	for id, h := range cfg.Keys {
		k, err := hex.DecodeString(h)
		if err != nil {
			return nil, errors.Wrapf(err, "crypto: key %q is not hex", id)
		}
		if len(k) != 32 {
			return nil, errors.Errorf("crypto: key %q must be 32 bytes, got %d", id, len(k))
		}
		keys[id] = k
	}
	if _, ok := keys[cfg.ActiveKeyID]; !ok {
		return nil, errors.Errorf("crypto: active key %q not configured", cfg.ActiveKeyID)
	}
	return &StaticKeys{active: cfg.ActiveKeyID, keys: keys}, nil
}

func (s *StaticKeys) ActiveKey() (string, []byte) { return s.active, s.keys[s.active] }

func (s *StaticKeys) Key(id string) ([]byte, bool) {
	k, ok := s.keys[id]
	return k, ok
}

// IDs lists the configured key ids in order.
func (s *StaticKeys) IDs() []string {
	out := make([]string, 0, len(s.keys))
	for id := range s.keys {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
