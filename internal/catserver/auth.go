package catserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTSecret is the HMAC signing key for examinee session tokens.
var JWTSecret = []byte("adaptivecat-staging-signing-key-2026")

type examineeIDKey struct{}

func generateToken(examineeID string) (string, error) {
	claims := jwt.MapClaims{
		"examinee_id": examineeID,
		"exp":         time.Now().Add(8 * time.Hour).Unix(),
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func parseToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	examineeID, ok := claims["examinee_id"].(string)
	if !ok || examineeID == "" {
		return "", errors.New("token missing examinee_id")
	}
	return examineeID, nil
}

func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		examineeID, err := parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
			return
		}

		ctx := r.Context()
		ctx = withExamineeID(ctx, examineeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HashProctorPIN hashes a proctor PIN that gates access to review sessions.
func HashProctorPIN(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash proctor pin: %w", err)
	}
	return string(hashed), nil
}

// VerifyProctorPIN reports whether pin matches the stored hash.
func VerifyProctorPIN(hash, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return errors.New("incorrect proctor pin")
	}
	return nil
}
