package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salesrep_portal/internal/http/middleware"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/config"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(actor *scoping.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/leads", func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ContextActorKey, *actor)
		}
		c.Next()
	})
	New(nil, validator.New(), logger.Discard()).RegisterRoutes(group, func(c *gin.Context) { c.Next() })
	return engine
}

func TestRoutesRequireResolvedActor(t *testing.T) {
	engine := newTestEngine(nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+uuid.NewString(), nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMalformedLeadIDIsBadRequest(t *testing.T) {
	actor := scoping.Actor{UserID: uuid.New(), Role: scoping.RoleSalesRep}
	engine := newTestEngine(&actor)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/not-a-uuid/convert", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateValidatesBody(t *testing.T) {
	actor := scoping.Actor{UserID: uuid.New(), Role: scoping.RoleSalesRep}
	engine := newTestEngine(&actor)

	body := `{"firstName":"Ada","lastName":"Lovelace","company":"Acme","zip":"ABCDE"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgValidationFailed) {
		t.Fatalf("expected validation failure body, got %s", rec.Body.String())
	}
}

func TestExtensionIsAdminOnly(t *testing.T) {
	actor := scoping.Actor{UserID: uuid.New(), Role: scoping.RoleSalesRep}
	engine := newTestEngine(&actor)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/"+uuid.NewString()+"/extension", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestExpiringSoonDaysFollowsConfiguration(t *testing.T) {
	h := New(nil, validator.New(), logger.Discard())
	assert.Equal(t, config.DefaultExpiringSoonDays, h.expiringSoonDays)

	assert.Equal(t, 5, h.WithExpiringSoonDays(5).expiringSoonDays)
	assert.Equal(t, 5, h.WithExpiringSoonDays(0).expiringSoonDays)
}

func TestCheckDuplicateRejectsMalformedZip(t *testing.T) {
	actor := scoping.Actor{UserID: uuid.New(), Role: scoping.RoleSalesRep}
	engine := newTestEngine(&actor)

	body := `{"company":"Acme","address":"1 Main St","zip":"1234é-6789"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leads/check-duplicate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgValidationFailed)
}
