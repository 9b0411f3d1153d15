package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"iris-payments/internal/domain"
)

// Sign computes the lowercase hex HMAC-SHA256 of payload under secret.
func Sign(payload, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the payload signature and compares it against
// candidateHex in constant time. hmac.Equal runs equal-time over the full
// length regardless of where the first mismatch occurs.
func Verify(candidateHex string, payload, secret []byte) bool {
	candidate, err := hex.DecodeString(strings.ToLower(candidateHex))
	if err != nil {
		return false
	}
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return hmac.Equal(candidate, h.Sum(nil))
}

// EncodeToken packs signature and payload into the gateway's combined wire
// token: base64(hexSignature + "|" + payload).
func EncodeToken(payload, secret []byte) string {
	sig := Sign(payload, secret)
	raw := append([]byte(sig+"|"), payload...)
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeToken unpacks a combined wire token into its signature and payload
// segments. The payload is everything after the FIRST delimiter, so JSON
// content containing '|' is never truncated.
func DecodeToken(token string) (signatureHex string, payload []byte, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", nil, domain.ErrMalformedToken
	}
	sig, rest, found := strings.Cut(string(raw), "|")
	if !found || sig == "" {
		return "", nil, domain.ErrMalformedToken
	}
	return sig, []byte(rest), nil
}
