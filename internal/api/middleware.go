package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/design-contest/internal/auth"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/pkg/logger"
)

const contextUserKey = "user"

// UserFinder resolves the user named by a token's pid claim.
type UserFinder interface {
	GetByPID(pid string) (*models.User, error)
}

// requireUser rejects requests without a valid bearer token for a known user.
func requireUser(secret string, users UserFinder, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			errorResponse(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(secret, token)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected token")
			errorResponse(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		user, err := users.GetByPID(claims.PID)
		if err != nil {
			log.Debug().Err(err).Str("pid", claims.PID).Msg("Token user not found")
			errorResponse(c, http.StatusUnauthorized, "user not authenticated")
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// currentUser returns the user stored by requireUser.
func currentUser(c *gin.Context) *models.User {
	user, _ := c.MustGet(contextUserKey).(*models.User)
	return user
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}
