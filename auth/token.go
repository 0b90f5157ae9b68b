package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/medipoint/medipointbackend/models"
)

// ErrInvalidToken covers malformed, tampered and wrong-role tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a session token. No expiry is encoded: a session ends
// when its token is removed from the identity's token list, not by clock.
type Claims struct {
	IdentityID string `json:"identity_id"`
	jwt.RegisteredClaims
}

func roleSecret(role *models.Role) ([]byte, error) {
	secret := os.Getenv(role.TokenSecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("%s not set", role.TokenSecretEnv)
	}
	return []byte(secret), nil
}

// IssueToken signs a session token for the identity under the role's secret.
// The caller is responsible for appending it to the identity's token list.
func IssueToken(role *models.Role, identityID string) (string, error) {
	secret, err := roleSecret(role)
	if err != nil {
		return "", err
	}
	claims := Claims{
		IdentityID: identityID,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique ID so two logins never mint the same token string.
			ID: uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken checks the signature under the role's secret and returns the
// identity id. It does not check the token is still active; that requires a
// store lookup by the caller.
func VerifyToken(role *models.Role, tokenStr string) (string, error) {
	secret, err := roleSecret(role)
	if err != nil {
		return "", err
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.IdentityID == "" {
		return "", ErrInvalidToken
	}
	return claims.IdentityID, nil
}
