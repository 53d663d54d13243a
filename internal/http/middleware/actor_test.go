package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/httpkit"
	"salesrep_portal/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type resolverFunc func(ctx context.Context, id uuid.UUID) (scoping.Actor, error)

func (f resolverFunc) ResolveActor(ctx context.Context, id uuid.UUID) (scoping.Actor, error) {
	return f(ctx, id)
}

func newEngine(userID *uuid.UUID, resolver ActorResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	chain := []gin.HandlerFunc{func(c *gin.Context) {
		if userID != nil {
			c.Set(httpkit.ContextUserIDKey, *userID)
		}
		c.Next()
	}, ResolveActor(resolver, logger.Discard())}
	chain = append(chain, extra...)
	chain = append(chain, func(c *gin.Context) {
		actor, _ := Actor(c)
		c.String(http.StatusOK, string(actor.Role))
	})
	engine.GET("/", chain...)
	return engine
}

func serve(engine *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestResolveActorRequiresIdentity(t *testing.T) {
	engine := newEngine(nil, resolverFunc(func(context.Context, uuid.UUID) (scoping.Actor, error) {
		t.Fatal("resolver must not be called")
		return scoping.Actor{}, nil
	}))

	if rec := serve(engine); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestResolveActorRejectsInactiveUser(t *testing.T) {
	id := uuid.New()
	engine := newEngine(&id, resolverFunc(func(context.Context, uuid.UUID) (scoping.Actor, error) {
		return scoping.Actor{}, apperr.Forbidden("inactive")
	}))

	if rec := serve(engine); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminBlocksSalesRep(t *testing.T) {
	id := uuid.New()
	resolver := resolverFunc(func(_ context.Context, userID uuid.UUID) (scoping.Actor, error) {
		return scoping.Actor{UserID: userID, Role: scoping.RoleSalesRep}, nil
	})

	if rec := serve(newEngine(&id, resolver, RequireAdmin())); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec := serve(newEngine(&id, resolver))
	if rec.Code != http.StatusOK || rec.Body.String() != string(scoping.RoleSalesRep) {
		t.Fatalf("expected resolved sales rep, got %d %q", rec.Code, rec.Body.String())
	}
}
