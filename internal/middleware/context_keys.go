package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// actorIDKey is the key used to store the acting user's ID.
const actorIDKey = contextKey("actorID")

// ActorHeader names the caller on whose behalf a request is made. Tenant and
// session resolution happen upstream; the ledger only records the actor.
const ActorHeader = "X-Actor-ID"

// SystemActor is recorded when a request names no actor.
const SystemActor = "system"

// ActorMiddleware reads the actor from ActorHeader into the Gin and request contexts.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			actor = SystemActor
		}
		c.Set(string(actorIDKey), actor)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), actorIDKey, actor))
		c.Next()
	}
}

// GetActorFromContext retrieves the actor ID from the Gin context.
// It falls back to SystemActor if the middleware did not run.
func GetActorFromContext(c *gin.Context) string {
	if v, exists := c.Get(string(actorIDKey)); exists {
		if actor, ok := v.(string); ok {
			return actor
		}
	}
	if actor, ok := c.Request.Context().Value(actorIDKey).(string); ok {
		return actor
	}
	return SystemActor
}
