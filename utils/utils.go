package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 14

const operatorTokenTTL = 24 * time.Hour

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateOperatorToken issues the HS256 bearer token that unlocks the
// mutating endpoints.
func GenerateOperatorToken(secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"role": "operator",
		"iat":  now.Unix(),
		"exp":  now.Add(operatorTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func Ptr[T any](v T) *T {
	return &v
}
