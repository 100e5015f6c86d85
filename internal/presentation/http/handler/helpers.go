package handler

import (
	"strconv"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	email, exists := c.Get("user_email")
	if !exists {
		return ""
	}
	return email.(string)
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, exists := c.Get("user_roles")
	if !exists {
		return nil
	}
	return roles.([]string)
}

// GetUserName extracts the display name set by the auth middleware, falling
// back to the email
func GetUserName(c *gin.Context) string {
	if name, exists := c.Get("user_name"); exists {
		if s, ok := name.(string); ok && s != "" {
			return s
		}
	}
	return GetUserEmail(c)
}

// HasRole checks whether the authenticated user carries the role
func HasRole(c *gin.Context, role string) bool {
	for _, r := range GetUserRoles(c) {
		if r == role {
			return true
		}
	}
	return false
}

// IsClientOnly reports whether the user's only role is the client role.
// Client-only users see the portal surface: visible notes, their own builds
// and invoices.
func IsClientOnly(c *gin.Context) bool {
	roles := GetUserRoles(c)
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if r != entity.RoleClient {
			return false
		}
	}
	return true
}

// GetPaginationParams reads page pagination from the query string
func GetPaginationParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}
}

// ParseUUIDParam parses a UUID path parameter, returning nil when invalid
func ParseUUIDParam(c *gin.Context, name string) *uuid.UUID {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return nil
	}
	return &id
}
