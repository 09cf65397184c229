package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"himakeu/models"
)

// Session cookie carrying the signed token. HttpOnly; Secure in production.
const sessionCookie = "himakeu_session"

const sessionTTL = 24 * time.Hour

const actorKey = "actor"

// actor is the authenticated identity for one request. It is built by
// authRequired from the session token and threaded through the gin context;
// handlers never read identity from anywhere else.
type actor struct {
	UserID   uint
	MemberID uint
	Username string
	Role     string
}

// issueToken signs a session token for the authenticated credential.
func issueToken(secret []byte, u *models.User, m *models.Member) (string, error) {
	claims := jwt.MapClaims{
		"uid":      u.ID,
		"mid":      m.ID,
		"username": u.Username,
		"role":     u.Role,
		"exp":      time.Now().Add(sessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// authRequired validates the session and injects the actor. The token is
// read from the session cookie, with an Authorization: Bearer fallback for
// non-browser clients.
func authRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(sessionCookie)
		if err != nil || tokenString == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenString = h[7:]
			}
		}
		if tokenString == "" {
			fail(c, http.StatusUnauthorized, "Authentication required. Please login first.")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			fail(c, http.StatusUnauthorized, "Invalid or expired session")
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			fail(c, http.StatusUnauthorized, "Invalid session claims")
			c.Abort()
			return
		}

		uid, _ := claims["uid"].(float64)
		mid, _ := claims["mid"].(float64)
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set(actorKey, actor{
			UserID:   uint(uid),
			MemberID: uint(mid),
			Username: username,
			Role:     role,
		})
		c.Next()
	}
}

// requireRole guards a route group behind one role.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		act, ok := currentActor(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "Authentication required. Please login first.")
			c.Abort()
			return
		}
		if act.Role != role {
			fail(c, http.StatusForbidden, "Access denied. "+role+" role required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) (actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return actor{}, false
	}
	act, ok := v.(actor)
	return act, ok
}

// setSessionCookie writes the token cookie; maxAge <= 0 clears it.
func setSessionCookie(c *gin.Context, cfg *Config, token string, maxAge int) {
	secure := cfg.Env == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", secure, true)
}
