package qrtoken

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/derick/campusqr/internal/pkg/logger"
)

// Codec errors
var (
	// ErrInvalidToken is the single error returned by Open for every
	// malformed, tampered or otherwise undecodable token. Callers must
	// not be able to tell a cipher failure from a parse failure.
	ErrInvalidToken = errors.New("invalid QR token")

	// ErrMissingSecret indicates the QR secret was not configured.
	ErrMissingSecret = errors.New("QR encryption secret is not configured")
)

// SchemaVersion is the current payload shape tag. Future shape changes
// dispatch on this field instead of guessing.
const SchemaVersion = "1.0"

const (
	keySize   = 32
	nonceSize = 16
)

// Payload is the plaintext identity encoded into a student QR code.
// Field names match the legacy wire format so previously printed badges
// keep scanning after a backend upgrade.
type Payload struct {
	RecordID      int64  `json:"id"`        // students.id in the roster database
	StudentNumber string `json:"studentId"` // human-readable student number, e.g. "STU001"
	DisplayName   string `json:"name"`      // name at time of issuance; allowed to go stale
	IssuedAt      int64  `json:"timestamp"` // milliseconds since epoch
	SchemaVersion string `json:"version"`
}

// Codec seals student identity payloads into opaque token strings and
// opens them back. The key is derived once at construction and the value
// is immutable afterwards, so a single codec may be shared across
// requests without locking.
//
// Tokens carry no expiry and there is no revocation list: a token stays
// decodable until the secret is rotated, which invalidates every token
// in circulation at once. Enrollment status is always re-checked against
// the live roster at verification time, never trusted from the token.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives an AES-256 key from the operator-supplied secret via
// HKDF-SHA256 and prepares the GCM cipher. An empty secret is a
// misconfiguration and refuses to construct rather than sealing tokens
// under a degenerate key.
func NewCodec(secret string) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("qr-token-key"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive QR token key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM mode: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Seal encrypts the payload into a transportable token string of the
// form "nonceHex:ciphertextHex". A fresh random nonce is generated on
// every call; two Seal calls with the same payload never produce the
// same token.
func (c *Codec) Seal(payload Payload) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize QR payload: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nil, nonce, plaintext, nil)

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext), nil
}

// Open decrypts and validates a token produced by Seal. The input may be
// attacker-controlled; any failure at any stage collapses to
// ErrInvalidToken with no stage detail, so callers cannot be used as a
// forgery oracle. The failing stage is recorded at debug level for
// operators.
func (c *Codec) Open(token string) (Payload, error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Payload{}, c.reject("split")
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return Payload{}, c.reject("nonce")
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return Payload{}, c.reject("ciphertext")
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Payload{}, c.reject("decrypt")
	}

	var payload Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return Payload{}, c.reject("parse")
	}

	if payload.RecordID <= 0 || payload.StudentNumber == "" || payload.SchemaVersion == "" {
		return Payload{}, c.reject("fields")
	}

	return payload, nil
}

// reject logs the internal failure stage and returns the generic error.
func (c *Codec) reject(stage string) error {
	logger.Debug().Str("stage", stage).Msg("QR token rejected")
	return ErrInvalidToken
}
