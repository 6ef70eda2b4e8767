package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/utils"
)

// AuthMiddleware validates the Bearer token and puts the caller's identity
// into the gin context: "user_id" (string) and "is_admin" (bool). Session
// issuance and user management live in the identity service; this service
// only verifies.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.ErrorLogger.Error("No authorization header provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "NO_TOKEN", "error": "No authorization token provided."})
			return
		}

		var tokenString string
		if len(authHeader) > 7 && strings.ToLower(authHeader[:7]) == "bearer " {
			tokenString = authHeader[7:]
		} else {
			logger.ErrorLogger.Error("Invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_AUTH_FORMAT", "error": "Invalid authorization format."})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return utils.GetJWTSecret(), nil
		})
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to parse JWT token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token."})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			logger.ErrorLogger.Error("Invalid token claims")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token."})
			return
		}

		if userID, exists := claims["user_id"]; exists {
			c.Set("user_id", userID)
		} else if sub, exists := claims["sub"]; exists {
			c.Set("user_id", sub)
		} else {
			logger.ErrorLogger.Error("No user identifier found in token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token claims."})
			return
		}

		if isAdmin, exists := claims["is_admin"]; exists {
			if flag, ok := isAdmin.(bool); ok {
				c.Set("is_admin", flag)
			}
		}

		logger.DebugLogger.Debugf("Authenticated request for user: %v", claims["user_id"])
		c.Next()
	}
}
