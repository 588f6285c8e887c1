// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/switchboard/internal/config"
	"github.com/tomtom215/switchboard/internal/presence"
)

var (
	// ErrMissingToken is returned when a request carries no token.
	ErrMissingToken = errors.New("missing token")

	// ErrNoIdentity is returned when a valid token names no usable user id.
	ErrNoIdentity = errors.New("token carries no usable identity")
)

// TokenQueryParam is the query parameter browsers use to pass the token,
// since the WebSocket API cannot set headers.
const TokenQueryParam = "token"

// JWTVerifier validates tokens issued by the REST layer with the shared
// HMAC secret and extracts the user id they carry.
type JWTVerifier struct {
	secret        []byte
	identityClaim string
	leeway        time.Duration
}

// NewJWTVerifier creates a verifier from the security configuration.
//
//	verifier, err := auth.NewJWTVerifier(&cfg.Security)
//	identity, err := verifier.VerifyRequest(r)
func NewJWTVerifier(cfg *config.SecurityConfig) (*JWTVerifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	claim := cfg.IdentityClaim
	if claim == "" {
		claim = "sub"
	}
	return &JWTVerifier{
		secret:        []byte(cfg.JWTSecret),
		identityClaim: claim,
		leeway:        30 * time.Second,
	}, nil
}

// Verify validates tokenString and returns the user id it carries: the
// configured identity claim, falling back to "sub".
//
// Only HMAC signing methods are accepted, which rules out "none" and
// algorithm confusion with public-key methods.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.leeway))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	identity := stringClaim(claims, v.identityClaim)
	if identity == "" {
		identity = stringClaim(claims, "sub")
	}
	if !presence.ValidIdentifier(identity) {
		return "", ErrNoIdentity
	}
	return identity, nil
}

// VerifyRequest extracts the token from the request and verifies it.
func (v *JWTVerifier) VerifyRequest(r *http.Request) (string, error) {
	return v.Verify(TokenFromRequest(r))
}

// GenerateToken signs a token for identity with HS256. The relay never
// issues tokens itself; this serves tests and local tooling.
func (v *JWTVerifier) GenerateToken(identity string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		v.identityClaim: identity,
		"iat":           now.Unix(),
		"nbf":           now.Unix(),
		"exp":           now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// TokenFromRequest returns the bearer token from the Authorization header,
// or the token query parameter, or "".
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		const prefix = "Bearer "
		if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
			return strings.TrimSpace(authHeader[len(prefix):])
		}
		return ""
	}
	return r.URL.Query().Get(TokenQueryParam)
}

func stringClaim(claims jwt.MapClaims, name string) string {
	if s, ok := claims[name].(string); ok {
		return s
	}
	return ""
}
