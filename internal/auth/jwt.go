package auth

import (
	"errors"
	"fmt"
	"time"

	"wager-ledger/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "wager-ledger"
	tokenTTL    = 24 * time.Hour
)

var ErrSecretNotInitialized = errors.New("JWT secret not initialized")

var jwtSecret []byte

func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// Claims identify a wallet session. The wallet address travels as the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Wallet decodes the subject back into the wallet address it was issued for.
func (c *Claims) Wallet() (models.Address, error) {
	wallet, err := models.AddressFromBase58(c.Subject)
	if err != nil {
		return models.Address{}, fmt.Errorf("token subject is not a wallet: %w", err)
	}
	return wallet, nil
}

// GenerateToken issues a session token for a wallet that proved ownership of
// its key.
func GenerateToken(wallet models.Address) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrSecretNotInitialized
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   wallet.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken accepts only HS256 tokens from this issuer whose subject is a
// well formed wallet address.
func ValidateToken(tokenString string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if _, err := claims.Wallet(); err != nil {
		return nil, err
	}
	return claims, nil
}
