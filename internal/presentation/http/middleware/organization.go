package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/repository"
	infraRepo "github.com/sokoni/eventpos-api/internal/infrastructure/repository"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
)

// OrganizationFromSlug resolves the organization for unauthenticated public
// routes from the :org path parameter and scopes the request context to it.
// Authenticated routes get their scope from the token instead.
func OrganizationFromSlug(orgRepo repository.OrganizationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("org")
		if slug == "" {
			response.BadRequest(c, "Organization slug is required")
			c.Abort()
			return
		}

		org, err := orgRepo.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if org == nil {
			response.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		c.Set("organization_id", org.ID)
		c.Set("organization", org)

		ctx := infraRepo.WithOrganization(c.Request.Context(), org.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireOrganization ensures a valid organization scope exists
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetOrganizationID(c) == uuid.Nil {
			response.BadRequest(c, "Organization context required")
			c.Abort()
			return
		}
		c.Next()
	}
}
