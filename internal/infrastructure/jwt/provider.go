package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Token audiences. A sign-in link token is never accepted as a bearer token
// and vice versa.
const (
	AudienceSession = "session"
	AudienceSignIn  = "signin"
)

// Claims holds the bearer token payload.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// LinkClaims holds the one-time sign-in link payload. Subject is the
// normalized email and ID (jti) is the link id consumed on use.
type LinkClaims struct {
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	now        func() time.Time
}

// NewProvider loads the RSA key pair from cfg. When the private key file does
// not exist a throwaway key is generated so local runs work without setup.
func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("jwt private key not found, using an ephemeral key", "path", cfg.JWTPrivateKeyPath)
		return NewEphemeralProvider(cfg.JWTExpiry)
	}
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{privateKey: privKey, publicKey: pubKey, expiry: cfg.JWTExpiry, now: time.Now}, nil
}

// NewEphemeralProvider generates an in-memory key pair. Tokens do not survive a restart.
func NewEphemeralProvider(expiry time.Duration) (*Provider, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return &Provider{privateKey: key, publicKey: &key.PublicKey, expiry: expiry, now: time.Now}, nil
}

func (p *Provider) Sign(userID, email, role string) (string, error) {
	now := p.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := p.parse(tokenStr, claims, AudienceSession); err != nil {
		return nil, err
	}
	return claims, nil
}

// SignLink issues a sign-in link token for email identified by linkID.
func (p *Provider) SignLink(email, linkID string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := LinkClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        linkID,
		Subject:   email,
		Audience:  jwt.ClaimStrings{AudienceSignIn},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
}

func (p *Provider) VerifyLink(tokenStr string) (*LinkClaims, error) {
	claims := &LinkClaims{}
	if err := p.parse(tokenStr, claims, AudienceSignIn); err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("incomplete sign-in link claims")
	}
	return claims, nil
}

func (p *Provider) parse(tokenStr string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithAudience(audience), jwt.WithTimeFunc(p.now))
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token claims")
	}
	return nil
}
