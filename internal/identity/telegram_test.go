package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// signInitData builds a valid initData query string the same way a
// Telegram client would, for use as test fixtures.
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	checkString := strings.Join(pairs, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(checkString))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestVerifyAcceptsValidInitData(t *testing.T) {
	const token = "test-bot-token"
	initData := signInitData(t, token, map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"username":"neo","first_name":"Thomas"}`,
	})

	v := NewVerifier(token)
	user, err := v.Verify(initData)
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)
	require.Equal(t, "Thomas", user.FirstName)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	const token = "test-bot-token"
	initData := signInitData(t, token, map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"username":"neo","first_name":"Thomas"}`,
	})

	// Flip a character in the signed payload without re-signing.
	tampered := strings.Replace(initData, "Thomas", "Mallory", 1)

	v := NewVerifier(token)
	_, err := v.Verify(tampered)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsWrongBotToken(t *testing.T) {
	initData := signInitData(t, "correct-token", map[string]string{
		"auth_date": "1700000000",
	})

	v := NewVerifier("wrong-token")
	_, err := v.Verify(initData)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsMissingHash(t *testing.T) {
	v := NewVerifier("test-bot-token")
	_, err := v.Verify("auth_date=1700000000")
	require.ErrorIs(t, err, ErrMissingHash)
}

func TestVerifyRejectsEmptyInitData(t *testing.T) {
	v := NewVerifier("test-bot-token")
	_, err := v.Verify("")
	require.ErrorIs(t, err, ErrMissingInitData)
}
