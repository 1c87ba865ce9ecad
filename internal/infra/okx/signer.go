package okx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes base64(HMAC-SHA256(secret, message)).
func Sign(secret, message []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Signer holds an API secret as []byte so it can be wiped from memory.
type Signer struct {
	secret []byte
}

// NewSigner copies secret into a private buffer.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign signs message with the held secret.
func (s *Signer) Sign(message string) string {
	return Sign(s.secret, []byte(message))
}

// Wipe zeroes the held secret.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	for i := range s.secret {
		s.secret[i] = 0
	}
}
