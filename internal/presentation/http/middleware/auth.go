package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/infrastructure/authz"
	infraRepo "github.com/sokoni/eventpos-api/internal/infrastructure/repository"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

// AuthMiddleware validates the bearer token and establishes the request's
// actor: user, device, organization scope and capabilities all come from
// the token claims.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_capabilities", claims.Capabilities)
		c.Set("organization_id", claims.OrganizationID)
		if claims.DeviceID != nil {
			c.Set("device_id", *claims.DeviceID)
		}

		// Scope and capabilities travel on the request context so the
		// service and repository layers see them without gin.
		ctx := infraRepo.WithOrganization(c.Request.Context(), claims.OrganizationID)
		ctx = authz.WithCapabilities(ctx, claims.Capabilities)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetOrganizationID retrieves the organization ID from gin context
func GetOrganizationID(c *gin.Context) uuid.UUID {
	orgIDVal, exists := c.Get("organization_id")
	if !exists {
		return uuid.Nil
	}
	orgID, ok := orgIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return orgID
}
