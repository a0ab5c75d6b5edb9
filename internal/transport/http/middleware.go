package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/pkg/actor"
)

// ActorHeader carries the opaque id of the acting user.
const ActorHeader = "X-Actor-ID"

// actorMiddleware stores the actor id from ActorHeader in the request context.
// Requests without it are recorded as system actions.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(ActorHeader); id != "" {
			c.Request = c.Request.WithContext(actor.WithActor(c.Request.Context(), id))
		}
		c.Next()
	}
}

// timeoutMiddleware bounds every request. Reservations in flight when the
// deadline passes are rolled back by the coordinator.
func timeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("actor", c.GetHeader(ActorHeader)),
		)
	}
}
