package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

// userIDKey is the gin context key the trusted caller identity is stored
// under by IdentityMiddleware.
const userIDKey = "userID"

// userIDHeader carries the already-authenticated user id. Verifying the
// credential behind it is the identity layer's job, not ours.
const userIDHeader = "X-User-ID"

// IdentityMiddleware rejects requests that arrive without a caller
// identity and stores it for the handlers.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// ErrorMiddleware maps the ledger error taxonomy to HTTP status codes.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			switch e := err.(type) {
			case *errors.NotFoundError:
				c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
			case *errors.ConflictError:
				c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
			case *errors.InvalidInputError:
				c.JSON(http.StatusBadRequest, gin.H{"error": e.Error()})
			case *errors.APIError:
				logger.Error("API error: %v", e)
				c.JSON(e.StatusCode, gin.H{"error": e.Message})
			case *errors.StorageError:
				logger.Error("Storage error: %v", e)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			default:
				logger.Error("Unexpected error: %v", e)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			c.Abort()
		}
	}
}
