package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodonline-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	ctxUserID    = "userID"
	ctxRole      = "role"
	ctxSessionID = "sessionID"
)

type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionLookup resolves a session id to the user that owns it.
type SessionLookup interface {
	Lookup(ctx context.Context, id string) (uint, error)
}

// GenerateToken creates a signed JWT bound to a server-side session id.
func GenerateToken(secret string, user *models.User, sessionID string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AuthRequired validates the bearer JWT, checks its session is still live and
// injects the caller identity into the context.
func AuthRequired(secret string, sessions SessionLookup, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		owner, err := sessions.Lookup(c.Request.Context(), claims.ID)
		if err != nil || owner != uint(userID) {
			if err != nil {
				logger.Debug().Err(err).Msg("session lookup failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again"})
			return
		}

		c.Set(ctxUserID, uint(userID))
		c.Set(ctxRole, claims.Role)
		c.Set(ctxSessionID, claims.ID)
		c.Next()
	}
}

// Identity is what the role gate knows about an authenticated caller.
type Identity struct {
	UserID uint
	Role   models.UserRole
}

// Decision is the outcome of the role gate.
type Decision int

const (
	Denied Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "denied"
}

// Gate authorizes a caller for a role-restricted area. Only an exact role
// match passes; staff flags and unset roles never do.
func Gate(id Identity, required models.UserRole) Decision {
	if id.UserID == 0 || required == models.RoleUnset {
		return Denied
	}
	if id.Role == required {
		return Authorized
	}
	return Denied
}

// RoleRequired aborts with a bare 403 unless the caller holds role. It must
// run after AuthRequired.
func RoleRequired(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Gate(CurrentIdentity(c), role) != Authorized {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity reads the identity AuthRequired stored. Missing values give
// the zero Identity.
func CurrentIdentity(c *gin.Context) Identity {
	return Identity{UserID: GetUserID(c), Role: GetRole(c)}
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get(ctxUserID)
	id, _ := val.(uint)
	return id
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(ctxRole)
	role, _ := val.(models.UserRole)
	return role
}

// GetSessionID returns the session id of the current request's token.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
