package middleware

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// actorID identifies who is submitting: the authenticated user on staff
// routes, the session on public ordering routes
func actorID(c *gin.Context) (uuid.UUID, bool) {
	if userIDVal, exists := c.Get("user_id"); exists {
		if userID, ok := userIDVal.(uuid.UUID); ok {
			return userID, true
		}
	}
	if sessionParam := c.Param("session_id"); sessionParam != "" {
		if sessionID, err := uuid.Parse(sessionParam); err == nil {
			return sessionID, true
		}
	}
	return uuid.Nil, false
}

// Idempotency replays the stored response for a repeated submission instead
// of processing it again. Requests without a key pass through unchanged.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return handleIdempotency(repo, false)
}

// IdempotencyRequired rejects submissions that carry no idempotency key.
// Used on the endpoints where a duplicate would create a second order.
func IdempotencyRequired(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return handleIdempotency(repo, true)
}

func handleIdempotency(repo repository.IdempotencyRepository, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "POST" && c.Request.Method != "PUT" && c.Request.Method != "PATCH" {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		actor, ok := actorID(c)
		if !ok {
			if required {
				response.Unauthorized(c, "Request actor could not be determined")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		existing, err := repo.GetByKey(c.Request.Context(), key, actor)
		if err == nil && existing != nil && !existing.IsExpired() {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Failed submissions are not recorded; the client may retry with
		// the same key.
		if c.Writer.Status() >= 500 {
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:          key,
			ActorID:      actor,
			Endpoint:     c.Request.Method + " " + c.FullPath(),
			ResponseCode: c.Writer.Status(),
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		_ = repo.Create(c.Request.Context(), ikey)
	}
}
