package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken TokenKind = "access"
)

// JWTManager signs and verifies RS256 operator tokens. A manager built
// without a private key can only verify.
type JWTManager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewJWTManager loads PEM keys from disk. privatePath may be empty.
func NewJWTManager(privatePath, publicPath, issuer string) (*JWTManager, error) {
	var privKey *rsa.PrivateKey
	if privatePath != "" {
		privPem, err := os.ReadFile(privatePath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		privKey, err = jwt.ParseRSAPrivateKeyFromPEM(privPem)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
	}

	var pubKey *rsa.PublicKey
	switch {
	case publicPath != "":
		pubPem, err := os.ReadFile(publicPath)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		pubKey, err = jwt.ParseRSAPublicKeyFromPEM(pubPem)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
	case privKey != nil:
		pubKey = &privKey.PublicKey
	default:
		return nil, errors.New("no public or private key configured")
	}

	return NewJWTManagerFromKeys(privKey, pubKey, issuer), nil
}

func NewJWTManagerFromKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey, issuer string) *JWTManager {
	return &JWTManager{privateKey: priv, publicKey: pub, issuer: issuer}
}

// IssueAccessToken signs an access token for subject.
func (m *JWTManager) IssueAccessToken(subject string, ttl time.Duration, roles []string) (string, time.Time, error) {
	if m.privateKey == nil {
		return "", time.Time{}, errors.New("private key not loaded")
	}

	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"iss": m.issuer,
		"sub": subject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
		"jti": uuid.New().String(),
		"typ": string(AccessToken),
	}
	if len(roles) > 0 {
		claims["roles"] = roles
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenStr, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenStr, exp, nil
}

// VerifyToken checks the RS256 signature, expiry, issuer and token kind.
func (m *JWTManager) VerifyToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if typ, _ := claims["typ"].(string); typ != string(AccessToken) {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}
