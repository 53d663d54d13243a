// Package middleware holds the request middleware that depends on domain
// concepts. Generic middleware lives in platform/httpkit.
package middleware

import (
	"context"
	"net/http"

	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/httpkit"
	"salesrep_portal/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextActorKey is the gin context key of the resolved scoping.Actor.
const ContextActorKey = "actor"

// ActorResolver loads the caller's current role and placement.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uuid.UUID) (scoping.Actor, error)
}

// ResolveActor turns the authenticated identity into a scoping.Actor. Role and
// placement come from the store on every request, so a demotion takes effect
// immediately. Unknown or inactive users are rejected.
func ResolveActor(resolver ActorResolver, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), identity.UserID())
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindForbidden) {
				c.AbortWithStatusJSON(http.StatusForbidden, httpkit.ErrorResponse{Error: "account is not active"})
				return
			}
			httpkit.HandleError(c, log, err)
			c.Abort()
			return
		}

		c.Set(ContextActorKey, actor)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, actor.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Actor returns the resolved actor of the request.
func Actor(c *gin.Context) (scoping.Actor, bool) {
	v, ok := c.Get(ContextActorKey)
	if !ok {
		return scoping.Actor{}, false
	}
	actor, ok := v.(scoping.Actor)
	return actor, ok
}

// MustActor returns the resolved actor or aborts with 401.
func MustActor(c *gin.Context) (scoping.Actor, bool) {
	actor, ok := Actor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: "unauthorized"})
		return scoping.Actor{}, false
	}
	return actor, true
}

// RequireAdmin allows any of the three administrator roles.
func RequireAdmin() gin.HandlerFunc {
	return requireRole(func(r scoping.Role) bool { return r.IsAdmin() })
}

// RequireOrganizationAdmin allows organization administrators only.
func RequireOrganizationAdmin() gin.HandlerFunc {
	return requireRole(func(r scoping.Role) bool { return r == scoping.RoleOrganizationAdmin })
}

func requireRole(allowed func(scoping.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := MustActor(c)
		if !ok {
			return
		}
		if !allowed(actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, httpkit.ErrorResponse{Error: "forbidden"})
			return
		}
		c.Next()
	}
}
