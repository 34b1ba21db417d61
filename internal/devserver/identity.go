package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/meetsync/internal/app"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const (
	identityKey = "identity"
	guestKey    = "guest_id"
)

var ErrInvalidToken = errors.New("invalid token")

// IssueToken signs a credential the client can read its identity from.
func IssueToken(secret string, id domain.UserID, p domain.Profile, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{"sub": string(id)}
	if ttl != 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	if p.FirstName != "" {
		claims["firstName"] = p.FirstName
	}
	if p.LastName != "" {
		claims["lastName"] = p.LastName
	}
	if p.Email != "" {
		claims["email"] = p.Email
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func verifyToken(secret, raw string) (domain.Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return app.ResolveIdentity(raw)
}

func bearer(header string) string {
	if v, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// IdentityMiddleware authenticates bearer tokens and falls back to a guest id
// kept in the cookie session.
func (s *Server) IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("token")
		}
		if raw != "" {
			id, err := verifyToken(s.opts.Secret, raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
				return
			}
			c.Set(identityKey, id)
			c.Next()
			return
		}

		sess := sessions.Default(c)
		guest, _ := sess.Get(guestKey).(string)
		if guest == "" {
			guest = "guest-" + uuid.NewString()
			sess.Set(guestKey, guest)
			_ = sess.Save()
		}
		c.Set(identityKey, domain.Identity{UserID: domain.UserID(guest), Anonymous: true})
		c.Next()
	}
}

func identityOf(c *gin.Context) domain.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(domain.Identity)
	return id
}
