package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dkeye/meetsync/internal/domain"
	"github.com/golang-jwt/jwt"
)

var (
	ErrNoUserClaim       = errors.New("credential has no user id claim")
	ErrCredentialExpired = errors.New("credential expired")
)

var userIDClaims = []string{"userId", "user_id", "user-id", "id", "sub"}

// ResolveIdentity reads the local user from credential claims. The token is
// not verified here; the backend does that on every call. An empty token
// yields an anonymous identity so guests can join by link.
func ResolveIdentity(token string) (domain.Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return domain.Identity{Anonymous: true}, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("parse credential: %w", err)
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), false) {
		return domain.Identity{}, ErrCredentialExpired
	}

	id := userIDFromClaims(claims)
	if id == "" {
		return domain.Identity{}, ErrNoUserClaim
	}
	return domain.Identity{
		UserID: id,
		Profile: domain.Profile{
			FirstName: stringClaim(claims, "firstName"),
			LastName:  stringClaim(claims, "lastName"),
			Email:     stringClaim(claims, "email"),
		},
	}, nil
}

func userIDFromClaims(claims jwt.MapClaims) domain.UserID {
	for _, key := range userIDClaims {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return domain.UserID(v)
			}
		case float64:
			return domain.UserID(strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return ""
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// ReadTokenFile returns the stored credential at path, empty if the file
// does not exist.
func ReadTokenFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
