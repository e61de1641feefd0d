package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader carries Meta's HMAC of the raw callback body.
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// ErrInvalidSignature is returned when a callback is not signed with the app secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifySignature checks header against the HMAC-SHA256 of body keyed by appSecret.
func VerifySignature(appSecret string, body []byte, header string) error {
	hexSum, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return ErrInvalidSignature
	}
	got, err := hex.DecodeString(hexSum)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(got, sum(appSecret, body)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the header value Meta would send for body.
func Sign(appSecret string, body []byte) string {
	return signaturePrefix + hex.EncodeToString(sum(appSecret, body))
}

func sum(appSecret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return mac.Sum(nil)
}
