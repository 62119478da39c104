package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestIssueAndVerify(t *testing.T) {
	key := newKey(t)
	m := NewJWTManagerFromKeys(key, &key.PublicKey, "waste-bknd")

	tok, exp, err := m.IssueAccessToken("ops@example.org", time.Hour, []string{"admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.org", claims["sub"])
	assert.Equal(t, "access", claims["typ"])
}

func TestVerifyRejects(t *testing.T) {
	key := newKey(t)
	m := NewJWTManagerFromKeys(key, &key.PublicKey, "waste-bknd")

	expired, _, err := m.IssueAccessToken("a", -time.Minute, nil)
	require.NoError(t, err)
	_, err = m.VerifyToken(expired)
	assert.Error(t, err)

	other := NewJWTManagerFromKeys(key, &key.PublicKey, "someone-else")
	foreign, _, err := other.IssueAccessToken("a", time.Hour, nil)
	require.NoError(t, err)
	_, err = m.VerifyToken(foreign)
	assert.Error(t, err)

	wrongKey := newKey(t)
	forged, _, err := NewJWTManagerFromKeys(wrongKey, &wrongKey.PublicKey, "waste-bknd").IssueAccessToken("a", time.Hour, nil)
	require.NoError(t, err)
	_, err = m.VerifyToken(forged)
	assert.Error(t, err)

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": "waste-bknd", "exp": time.Now().Add(time.Hour).Unix(), "typ": "access"})
	hsTok, err := hs.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.VerifyToken(hsTok)
	assert.Error(t, err)
}

func TestVerifyOnlyManager(t *testing.T) {
	key := newKey(t)
	m := NewJWTManagerFromKeys(nil, &key.PublicKey, "waste-bknd")
	_, _, err := m.IssueAccessToken("a", time.Hour, nil)
	assert.Error(t, err)
}

func TestNewJWTManager_FromFiles(t *testing.T) {
	key := newKey(t)
	dir := t.TempDir()

	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{
		Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{
		Type: "PUBLIC KEY", Bytes: pubDER,
	}), 0o644))

	signer, err := NewJWTManager(privPath, "", "waste-bknd")
	require.NoError(t, err)
	verifier, err := NewJWTManager("", pubPath, "waste-bknd")
	require.NoError(t, err)

	tok, _, err := signer.IssueAccessToken("ops", time.Minute, nil)
	require.NoError(t, err)
	_, err = verifier.VerifyToken(tok)
	assert.NoError(t, err)

	_, err = NewJWTManager("", "", "waste-bknd")
	assert.Error(t, err)
}
