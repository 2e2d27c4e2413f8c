package config

import "strings"

// CryptoConfig carries the field-encryption keys.  ENCRYPTION_KEYS lists
// "id:hexkey" pairs (32-byte keys, 64 hex chars); ENCRYPTION_ACTIVE_KEY
// names the key used for new ciphertexts.  The legacy single ENCRYPTION_KEY
// is accepted as key id "v1".  FINGERPRINT_KEY keys the blind index used
// for uniqueness checks on encrypted columns.
type CryptoConfig struct {
	Keys           map[string]string
	ActiveKeyID    string
	FingerprintKey string
}

func LoadCryptoConfig() CryptoConfig {
	keys := map[string]string{}
	for _, pair := range envList("ENCRYPTION_KEYS", nil) {
		id, hex, ok := strings.Cut(pair, ":")
		if !ok || id == "" || hex == "" {
			continue
		}
		keys[strings.TrimSpace(id)] = strings.TrimSpace(hex)
	}
	if legacy := envStr("ENCRYPTION_KEY", ""); legacy != "" {
		if _, exists := keys["v1"]; !exists {
			keys["v1"] = legacy
		}
	}
	active := envStr("ENCRYPTION_ACTIVE_KEY", "v1")
	return CryptoConfig{
		Keys:           keys,
		ActiveKeyID:    active,
		FingerprintKey: envStr("FINGERPRINT_KEY", keys[active]),
	}
}
