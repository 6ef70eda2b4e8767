// utils/context.go
package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joy095/boardroom/logger"
)

// GetUserIDFromContext extracts the authenticated user id set by the auth
// middleware and parses it into a uuid.UUID.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	rawUserID, exists := c.Get("user_id")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return uuid.Nil, ErrUserIDNotFound
	}

	userIDStr, ok := rawUserID.(string)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not a string, actual type: %T", rawUserID)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format in context")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse user ID string '%s' to UUID: %v", userIDStr, err)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format")
	}
	return userID, nil
}

// IsAdminFromContext reports whether the auth middleware marked the caller as
// an administrator.
func IsAdminFromContext(c *gin.Context) bool {
	rawIsAdmin, exists := c.Get("is_admin")
	if !exists {
		return false
	}
	isAdmin, ok := rawIsAdmin.(bool)
	return ok && isAdmin
}
