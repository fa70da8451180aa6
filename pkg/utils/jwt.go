package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the resolved identity this service receives. Token issuing
// lives in the identity provider; we only verify and read.
type Claims struct {
	CustomerID int64 `json:"customer_id"`
	IsEmployee bool  `json:"is_employee"`
	jwt.RegisteredClaims
}

func ValidateToken(tokenString string) (*Claims, error) {
	secret := os.Getenv("ACCESS_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is not found in env")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateToken mints a short-lived access token. Kept here for local
// runs and the integration suite; production tokens come from the
// identity provider.
func GenerateToken(customerID int64, isEmployee bool) (string, error) {
	secret := os.Getenv("ACCESS_SECRET")
	if secret == "" {
		return "", fmt.Errorf("jwt secret is not found in env")
	}

	claims := Claims{
		CustomerID: customerID,
		IsEmployee: isEmployee,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
