package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ajabadia/caseflow/internal/application/service"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

// Actor identity headers. Authentication happens upstream (gateway); this
// layer trusts the headers it receives and only enforces their presence.
const (
	headerActorID       = "X-Actor-Id"
	headerActorName     = "X-Actor-Name"
	headerTenantID      = "X-Tenant-Id"
	headerActorRoles    = "X-Actor-Roles"
	headerCorrelationID = "X-Correlation-Id"
)

const (
	contextKeyActor         = "actor"
	contextKeyCorrelationID = "correlation_id"
)

// actorMiddleware extracts the acting identity from request headers.
// Requests without an actor id or tenant id are rejected before reaching
// any handler.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(headerActorID)
		tenantID := c.GetHeader(headerTenantID)
		if actorID == "" || tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing actor identity headers",
			})
			return
		}

		c.Set(contextKeyActor, service.Actor{
			ID:       actorID,
			Name:     c.GetHeader(headerActorName),
			TenantID: tenantID,
			Roles:    parseRoles(c.GetHeader(headerActorRoles)),
		})
		c.Next()
	}
}

// correlationMiddleware ensures every request carries a correlation id,
// generating one when the caller did not supply it. The id is echoed back
// in the response headers.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(headerCorrelationID)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		c.Set(contextKeyCorrelationID, correlationID)
		c.Header(headerCorrelationID, correlationID)
		c.Next()
	}
}

// parseRoles splits the comma-separated roles header, dropping empty items.
func parseRoles(header string) []workflow.Role {
	if header == "" {
		return nil
	}
	var roles []workflow.Role
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			roles = append(roles, workflow.Role(part))
		}
	}
	return roles
}

// actorFrom returns the actor stored by actorMiddleware.
func actorFrom(c *gin.Context) service.Actor {
	actor, _ := c.MustGet(contextKeyActor).(service.Actor)
	return actor
}

// correlationIDFrom returns the request's correlation id.
func correlationIDFrom(c *gin.Context) string {
	return c.GetString(contextKeyCorrelationID)
}
