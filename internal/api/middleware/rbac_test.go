package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

type stubEntitlements struct {
	resolveFn func(ctx context.Context, userID string) (*domain.ResolvedProfile, error)
}

func (s *stubEntitlements) Resolve(ctx context.Context, userID string) (*domain.ResolvedProfile, error) {
	return s.resolveFn(ctx, userID)
}

func (s *stubEntitlements) HasPermission(context.Context, *domain.ResolvedProfile, string) bool {
	return false
}

func (s *stubEntitlements) HasAnyCapability(context.Context, *domain.ResolvedProfile, ...domain.Capability) bool {
	return false
}

func (s *stubEntitlements) HasBouquetFeature(context.Context, *domain.ResolvedProfile, string) bool {
	return false
}

func (s *stubEntitlements) CheckQuota(context.Context, *domain.ResolvedProfile, domain.RecordKind, domain.AssetCategory) (*ports.QuotaDecision, error) {
	return nil, nil
}

func TestResolveProfile_StoresProfile(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextUserID, "user-1")

	stub := &stubEntitlements{resolveFn: func(_ context.Context, userID string) (*domain.ResolvedProfile, error) {
		if userID != "user-1" {
			t.Fatalf("unexpected user id %q", userID)
		}
		return &domain.ResolvedProfile{Profile: domain.Profile{UserID: userID}}, nil
	}}

	called := false
	handler := ResolveProfile(stub)(func(c echo.Context) error {
		called = true
		if got := Profile(c).UserID(); got != "user-1" {
			t.Fatalf("profile not stored, got %q", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestResolveProfile_RequiresUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	stub := &stubEntitlements{resolveFn: func(context.Context, string) (*domain.ResolvedProfile, error) {
		t.Fatalf("should not resolve without a user")
		return nil, nil
	}}

	handler := ResolveProfile(stub)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestResolveProfile_PropagatesErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextUserID, "user-1")

	boom := errors.New("mongo down")
	stub := &stubEntitlements{resolveFn: func(context.Context, string) (*domain.ResolvedProfile, error) {
		return nil, boom
	}}

	err := ResolveProfile(stub)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestProfile_MissingIsNil(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if Profile(c) != nil {
		t.Fatalf("expected nil profile")
	}
}
