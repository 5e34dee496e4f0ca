package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"blog-api/internal/domain"
	"blog-api/internal/service"
)

func newGuardRouter(t *testing.T, tokens TokenVerifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) {
		identity, found := IdentityFromContext(c.Request.Context())
		claims, hasClaims := GetAuthClaims(c)
		if !found || !hasClaims || identity.AccountID != claims.UserID {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accountId": identity.AccountID, "role": identity.Role})
	}
	r.GET("/protected", RequireAuth(tokens), ok)
	r.GET("/admin", RequireAdmin(tokens), ok)
	return r
}

func mustTokenService(t *testing.T, secret string) *service.TokenService {
	t.Helper()
	svc, err := service.NewTokenService(secret, "blog-api")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return svc
}

func TestRequireAuth_AllowsValidToken(t *testing.T) {
	tokens := mustTokenService(t, "secret")
	r := newGuardRouter(t, tokens)
	token, _ := tokens.Mint("acct-1", domain.RoleUser)

	rec := performRequest(r, http.MethodGet, "/protected", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["accountId"] != "acct-1" || body["role"] != "User" {
		t.Fatalf("unexpected identity: %v", body)
	}
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	r := newGuardRouter(t, mustTokenService(t, "secret"))

	rec := performRequest(r, http.MethodGet, "/protected", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Unauthorized - no token provided" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestRequireAuth_RejectsNonBearerScheme(t *testing.T) {
	tokens := mustTokenService(t, "secret")
	r := newGuardRouter(t, tokens)
	token, _ := tokens.Mint("acct-1", domain.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_RejectsInvalidToken(t *testing.T) {
	other := mustTokenService(t, "other-secret")
	r := newGuardRouter(t, mustTokenService(t, "secret"))
	foreign, _ := other.Mint("acct-1", domain.RoleAdmin)

	for _, token := range []string{"garbage", foreign} {
		rec := performRequest(r, http.MethodGet, "/protected", token, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", token, rec.Code)
		}
		if body := decodeBody(t, rec); body["message"] != "Invalid token. Authentication failed." {
			t.Fatalf("unexpected message: %v", body["message"])
		}
	}
}

func TestRequireAdmin_RejectsUserRole(t *testing.T) {
	tokens := mustTokenService(t, "secret")
	r := newGuardRouter(t, tokens)
	token, _ := tokens.Mint("acct-1", domain.RoleUser)

	rec := performRequest(r, http.MethodGet, "/admin", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forbidden role, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Not authorized as admin. Try login as admin." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestRequireAdmin_AllowsAdminRole(t *testing.T) {
	tokens := mustTokenService(t, "secret")
	r := newGuardRouter(t, tokens)
	token, _ := tokens.Mint("acct-9", domain.RoleAdmin)

	rec := performRequest(r, http.MethodGet, "/admin", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAuth_MissingSigningKeyIsServerError(t *testing.T) {
	var tokens *service.TokenService
	r := newGuardRouter(t, tokens)

	rec := performRequest(r, http.MethodGet, "/protected", "some-token", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

type stubVerifier struct {
	calls  int
	claims service.Claims
	err    error
}

func (s *stubVerifier) Verify(string) (service.Claims, error) {
	s.calls++
	return s.claims, s.err
}

func TestAuthorize_Ordering(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(header string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		return c
	}

	stub := &stubVerifier{err: service.ErrInvalidToken}
	if _, err := Authorize(newCtx(""), stub, domain.RoleAdmin); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no verification without token, got %d calls", stub.calls)
	}

	_, err := Authorize(newCtx("Bearer abc"), stub, domain.RoleAdmin)
	if !errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrUnauthenticated before role check, got %v", err)
	}
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected wrapped ErrInvalidToken, got %v", err)
	}

	stub = &stubVerifier{claims: service.Claims{UserID: "u1", Role: domain.RoleUser}}
	if _, err := Authorize(newCtx("bearer abc"), stub, domain.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	claims, err := Authorize(newCtx("Bearer abc"), stub, domain.RoleUser)
	if err != nil || claims.UserID != "u1" {
		t.Fatalf("expected claims for authenticated gate, got %+v, %v", claims, err)
	}
}

func TestRequireAuth_RejectsExpiredToken(t *testing.T) {
	r := newGuardRouter(t, &stubVerifier{err: service.ErrTokenExpired})

	rec := performRequest(r, http.MethodGet, "/protected", "x", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}
