package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// SecretBox encrypts a session's Logon password at rest (SPEC_FULL.md
// §4.7a). Grounded on fix/credentials.go's encrypt/decrypt pair, narrowed
// from a multi-user CredentialStore down to the single key-derivation a
// session needs: the master passphrase never touches disk, only the
// PBKDF2-derived key lives in memory for the session's lifetime.
type SecretBox struct {
	key []byte
}

const (
	secretKeyIterations = 100000
	secretKeySalt       = "hotfix-session-secret-salt-v1"
)

// NewSecretBox derives an AES-256 key from masterPassphrase via PBKDF2.
func NewSecretBox(masterPassphrase string) *SecretBox {
	key := pbkdf2.Key([]byte(masterPassphrase), []byte(secretKeySalt), secretKeyIterations, 32, sha256.New)
	return &SecretBox{key: key}
}

// Encrypt seals plaintext with AES-GCM, returning a base64 string safe to
// store in a YAML config value.
func (b *SecretBox) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Called just before a Logon is built so the
// plaintext password never lives longer than one message construction.
func (b *SecretBox) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("session: ciphertext too short")
	}
	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
