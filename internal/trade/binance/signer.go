package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signer produces the HMAC-SHA256 hex signature Binance requires on
// TRADE-weight endpoints. The payload is the encoded query string.
type signer struct {
	secret []byte
}

func newSigner(secret string) *signer {
	return &signer{secret: []byte(secret)}
}

func (s *signer) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
