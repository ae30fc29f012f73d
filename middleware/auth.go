package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"deal-pipeline-api/models"
	"deal-pipeline-api/services"
	"deal-pipeline-api/workflow"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const callerKey = "caller"

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	RoleID int    `json:"role_id"`
	jwt.RegisteredClaims
}

// CallerResolver turns a verified token subject into a Caller.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, userID int) (services.Caller, error)
}

// IssueToken signs an HS256 token for user. Login lives outside this
// service; tokens issued here are for ops tooling and tests.
func IssueToken(secret string, user models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.UserID,
		Email:  user.Email,
		RoleID: user.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AuthMiddleware validates JWT token and resolves the caller
func AuthMiddleware(secret string, resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		// Role and partner binding come from the store, not the token
		caller, err := resolver.ResolveCaller(c.Request.Context(), claims.UserID)
		if err != nil {
			if workflow.IsKind(err, workflow.KindUnauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to resolve user"})
			}
			c.Abort()
			return
		}

		c.Set("userID", caller.UserID)
		c.Set("email", claims.Email)
		c.Set("roleID", caller.RoleID)
		SetCaller(c, caller)

		c.Next()
	}
}

// SetCaller stores the resolved caller on the request context.
func SetCaller(c *gin.Context, caller services.Caller) {
	c.Set(callerKey, caller)
}

// CurrentCaller returns the caller set by AuthMiddleware. The zero Caller is
// returned for unauthenticated requests.
func CurrentCaller(c *gin.Context) services.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(services.Caller); ok {
			return caller
		}
	}
	return services.Caller{}
}

// RequireRole checks if user has specific role
func RequireRole(roleIDs ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoleID, exists := c.Get("roleID")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		userRole := userRoleID.(int)
		allowed := false
		for _, roleID := range roleIDs {
			if userRole == roleID {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
