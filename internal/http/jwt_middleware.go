package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-api/internal/domain"
	"blog-api/internal/service"
)

const authClaimsKey = "auth_claims"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// TokenVerifier valida bearer tokens sin tocar la base de datos.
type TokenVerifier interface {
	Verify(token string) (service.Claims, error)
}

// Identity es la identidad autenticada que viaja en el contexto del request.
type Identity struct {
	AccountID string
	Role      domain.Role
}

type identityContextKey struct{}

// IdentityFromContext obtiene la identidad autenticada del contexto.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// Authorize extrae y verifica el bearer token y, si required es Admin, exige ese rol.
// El orden es fijo: presencia del token, firma, rol.
func Authorize(c *gin.Context, tokens TokenVerifier, required domain.Role) (service.Claims, error) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		return service.Claims{}, ErrUnauthenticated
	}
	claims, err := tokens.Verify(token)
	if errors.Is(err, service.ErrMissingSigningKey) {
		return service.Claims{}, err
	}
	if err != nil {
		return service.Claims{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if required == domain.RoleAdmin && claims.Role != domain.RoleAdmin {
		return service.Claims{}, ErrForbidden
	}
	return claims, nil
}

// RequireAuth deja pasar cualquier token válido.
func RequireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return guard(tokens, domain.RoleUser)
}

// RequireAdmin deja pasar solo tokens válidos con rol Admin.
func RequireAdmin(tokens TokenVerifier) gin.HandlerFunc {
	return guard(tokens, domain.RoleAdmin)
}

// guard responde 401 tanto para token ausente/inválido como para rol insuficiente;
// los clientes existentes esperan 401 en ambos casos.
func guard(tokens TokenVerifier, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			respondError(c, http.StatusInternalServerError, "Server error")
			return
		}

		claims, err := Authorize(c, tokens, required)
		switch {
		case err == nil:
		case errors.Is(err, ErrForbidden):
			respondError(c, http.StatusUnauthorized, "Not authorized as admin. Try login as admin.")
			return
		case errors.Is(err, ErrUnauthenticated) && bearerToken(c.GetHeader("Authorization")) == "":
			respondError(c, http.StatusUnauthorized, "Unauthorized - no token provided")
			return
		case errors.Is(err, ErrUnauthenticated):
			respondError(c, http.StatusUnauthorized, "Invalid token. Authentication failed.")
			return
		default:
			respondError(c, http.StatusInternalServerError, "Server error")
			return
		}

		c.Set(authClaimsKey, claims)
		ctx := context.WithValue(c.Request.Context(), identityContextKey{}, Identity{
			AccountID: claims.UserID,
			Role:      claims.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
