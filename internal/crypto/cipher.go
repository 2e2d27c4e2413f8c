package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is returned for values that are not ciphertexts produced
// by FieldCipher.
var ErrMalformed = errors.New("crypto: malformed ciphertext")

// FieldCipher encrypts single column values with AES-256-GCM.  The
// stored form is "<key id>:<base64(nonce || sealed)>", so the key used
// for each value is known when decrypting.
type FieldCipher struct {
	keys    KeyProvider
	fpKey   []byte
	randSrc io.Reader
}

// NewFieldCipher builds a cipher over keys.  fingerprintKey keys the HMAC
// used by Fingerprint.
func NewFieldCipher(keys KeyProvider, fingerprintKey []byte) *FieldCipher {
	return &FieldCipher{keys: keys, fpKey: fingerprintKey, randSrc: rand.Reader}
}

// NewFieldCipherHex is NewFieldCipher with a hex encoded fingerprint key.
func NewFieldCipherHex(keys KeyProvider, fingerprintKeyHex string) (*FieldCipher, error) {
	fp, err := hex.DecodeString(fingerprintKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "crypto: fingerprint key is not hex")
	}
	if len(fp) == 0 {
		return nil, errors.New("crypto: empty fingerprint key")
	}
	return NewFieldCipher(keys, fp), nil
}

func gcmFor(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plain with the active key.
func (c *FieldCipher) Encrypt(plain string) (string, error) {
	id, key := c.keys.ActiveKey()
	aead, err := gcmFor(key)
	if err != nil {
		return "", errors.Wrap(err, "crypto: init cipher")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(c.randSrc, nonce); err != nil {
		return "", errors.Wrap(err, "crypto: nonce")
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), []byte(id))
	return id + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt under any configured key.
func (c *FieldCipher) Decrypt(stored string) (string, error) {
	id, body, ok := strings.Cut(stored, ":")
	if !ok || id == "" {
		return "", ErrMalformed
	}
	key, ok := c.keys.Key(id)
	if !ok {
		return "", errors.Errorf("crypto: unknown key id %q", id)
	}
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", ErrMalformed
	}
	aead, err := gcmFor(key)
	if err != nil {
		return "", errors.Wrap(err, "crypto: init cipher")
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrMalformed
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, []byte(id))
	if err != nil {
		return "", errors.Wrap(err, "crypto: open")
	}
	return string(plain), nil
}

// EncryptPtr encrypts an optional value; nil and "" stay nil.
func (c *FieldCipher) EncryptPtr(v *string) (*string, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	out, err := c.Encrypt(*v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DecryptPtr is the inverse of EncryptPtr.
func (c *FieldCipher) DecryptPtr(v *string) (*string, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	out, err := c.Decrypt(*v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NeedsRotation reports whether stored was sealed with a key other than
// the active one.
func (c *FieldCipher) NeedsRotation(stored string) bool {
	id, _, ok := strings.Cut(stored, ":")
	active, _ := c.keys.ActiveKey()
	return ok && id != active
}

// Fingerprint returns a hex HMAC-SHA256 of the parts joined by ":".  It is
// deterministic, so it can back a unique index over encrypted columns.
func (c *FieldCipher) Fingerprint(parts ...string) string {
	mac := hmac.New(sha256.New, c.fpKey)
	mac.Write([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(mac.Sum(nil))
}
