package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"tabserv/internal/models"
)

const principalKey = "principal"

// AuthGuard verifies an HS256 bearer token issued by the identity service and
// stores the resulting Principal in the context. Roles are compared in lower
// case everywhere downstream.
func AuthGuard(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			log.Println("[AUTH] [ERROR] missing token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Println("[AUTH] [ERROR] invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			log.Println("[AUTH] [ERROR] token claims invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		principal, ok := principalFromClaims(claims)
		if !ok {
			log.Println("[AUTH] [ERROR] username claim missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func principalFromClaims(claims jwt.MapClaims) (models.Principal, bool) {
	username, _ := claims["username"].(string)
	if strings.TrimSpace(username) == "" {
		username, _ = claims["sub"].(string)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Principal{}, false
	}

	role, _ := claims["user_type"].(string)
	if role == "" {
		role, _ = claims["role"].(string)
	}
	privilege, _ := claims["privilege"].(string)

	return models.Principal{
		Username:  username,
		Role:      strings.ToLower(strings.TrimSpace(role)),
		Privilege: strings.ToLower(strings.TrimSpace(privilege)),
	}, true
}

// CurrentPrincipal returns the principal set by AuthGuard.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}
