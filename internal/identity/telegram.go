// Package identity verifies Telegram Mini App initData payloads and
// extracts the caller's identity for the connection session layer.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

var (
	ErrMissingInitData = errors.New("identity: missing initData")
	ErrMissingHash      = errors.New("identity: missing hash field")
	ErrBadSignature     = errors.New("identity: signature mismatch")
)

// User is the subset of the Telegram user object the table/session
// layer cares about.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Verifier checks Telegram WebApp initData signatures against a bot
// token: an HMAC-SHA256 of the sorted data-check string, keyed by
// SHA256(botToken) (not the "WebAppData"-derived key of Telegram's
// Mini App documentation).
type Verifier struct {
	secretKey [32]byte
}

// NewVerifier derives the data-check secret key from the bot token:
// secret = SHA256(botToken).
func NewVerifier(botToken string) *Verifier {
	return &Verifier{secretKey: sha256.Sum256([]byte(botToken))}
}

// Verify parses and validates a raw initData query string, returning
// the embedded user on success.
func (v *Verifier) Verify(initData string) (*User, error) {
	if initData == "" {
		return nil, ErrMissingInitData
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return nil, ErrMissingHash
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	mac := hmac.New(sha256.New, v.secretKey[:])
	mac.Write([]byte(checkString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(receivedHash)) {
		return nil, ErrBadSignature
	}

	var user User
	if raw := values.Get("user"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &user)
	}
	return &user, nil
}
