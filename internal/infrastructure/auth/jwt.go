package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultIssuer = "connectfood"

// JWTService verifies HS256 bearer tokens whose subject is a user's login
// or email.
type JWTService struct {
	secretKey      []byte
	accessTokenTTL time.Duration
	issuer         string
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration, issuer string) *JWTService {
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &JWTService{
		secretKey:      []byte(secretKey),
		accessTokenTTL: accessTokenTTL,
		issuer:         issuer,
	}
}

// GenerateAccessToken signs a token for subject. Issuance is not exposed
// over HTTP; it exists for operators and tests.
func (s *JWTService) GenerateAccessToken(subject string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.accessTokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenStr, expiresAt, nil
}

// Validate reports whether the token carries a valid signature, has not
// expired and names a subject. It never panics on malformed input.
func (s *JWTService) Validate(tokenStr string) bool {
	_, err := s.parse(tokenStr)
	return err == nil
}

// Subject returns the subject of a token previously accepted by Validate.
// For a token Validate rejects, the result is the empty string.
func (s *JWTService) Subject(tokenStr string) string {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return ""
	}
	return claims.Subject
}

func (s *JWTService) parse(tokenStr string) (*jwt.RegisteredClaims, error) {
	if tokenStr == "" {
		return nil, errors.New("empty token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
