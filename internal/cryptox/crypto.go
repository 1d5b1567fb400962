// Package cryptox implements the field-level encryption used by the ticket
// archive: argon2id key derivation and AES-GCM sealing with a random nonce
// prefixed to the ciphertext.
//
// Key derivation is deliberately expensive. A Cipher pays it once at
// construction and is then cheap per field, which is why ciphers are pooled
// as reusable workers rather than rebuilt per archive call.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	keyLen       = 32
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// DeriveKey stretches a passphrase and salt into a 32-byte AES-256 key using
// argon2id. Same inputs always produce the same key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, keyLen)
}

// Cipher is a reusable AES-GCM encryptor for sensitive archive fields
// (usernames, display names, message payloads). A Cipher must be owned by
// one archive operation at a time; the worker pool enforces exclusivity.
type Cipher struct {
	aead cipher.AEAD
}

// New derives the AES key from passphrase and salt and builds the AEAD.
// The derived key is wiped before returning.
func New(passphrase, salt []byte) (*Cipher, error) {
	if len(salt) == 0 {
		return nil, common.ErrInvalidSalt
	}

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random nonce. The nonce is prepended
// to the returned blob, so it is self-contained. Equal plaintexts produce
// different ciphertexts between calls; callers must not compare blobs for
// plaintext equality.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := common.GenerateRandByteArray(c.aead.NonceSize())
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// EncryptString encrypts s as a nonce-prefixed blob.
func (c *Cipher) EncryptString(s string) ([]byte, error) {
	return c.Encrypt([]byte(s))
}

// EncryptJSON serializes v to JSON and encrypts the result as one blob.
func (c *Cipher) EncryptJSON(v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(plaintext)
}

// Decrypt opens a nonce-prefixed blob produced by Encrypt. Truncated or
// tampered input fails GCM authentication and returns an error.
func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(blob) <= ns {
		return nil, common.ErrInvalidCiphertext
	}
	return c.aead.Open(nil, blob[:ns], blob[ns:], nil)
}

// DecryptString is Decrypt with a string result.
func (c *Cipher) DecryptString(blob []byte) (string, error) {
	plaintext, err := c.Decrypt(blob)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// DecryptJSON decrypts blob and unmarshals the plaintext into v.
func (c *Cipher) DecryptJSON(blob []byte, v any) error {
	plaintext, err := c.Decrypt(blob)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}
