package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
	"github.com/sokoni/eventpos-api/pkg/pagination"
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

// GetDeviceID extracts the device ID from the Gin context
func GetDeviceID(c *gin.Context) *uuid.UUID {
	deviceIDVal, exists := c.Get("device_id")
	if !exists {
		return nil
	}
	deviceID, ok := deviceIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &deviceID
}

// paramUUID parses a UUID path parameter; on failure it writes a 400
// response and reports false
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination reads page/per_page query parameters
func parsePagination(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// optionalUUID parses an optional string into a UUID pointer
func optionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
