package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-api/internal/domain"
	"blog-api/internal/service"
)

// Providers soportados en POST /auth/{provider}-login.
var providerLabels = map[string]string{
	"google": "Google",
	"github": "GitHub",
}

// AuthHandler mantiene dependencias para los endpoints de login externo.
type AuthHandler struct {
	logger   *zap.Logger
	resolver *service.IdentityResolver
	tokens   *service.TokenService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, resolver *service.IdentityResolver, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		resolver: resolver,
		tokens:   tokens,
	}
}

type loginRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	ProviderID string `json:"providerId"`
	GoogleID   string `json:"googleId"`
	GitHubID   string `json:"githubId"`
}

// providerID acepta las claves antiguas googleId/githubId si falta providerId.
func (r loginRequest) providerID(provider string) string {
	if id := strings.TrimSpace(r.ProviderID); id != "" {
		return id
	}
	switch provider {
	case "google":
		return strings.TrimSpace(r.GoogleID)
	case "github":
		return strings.TrimSpace(r.GitHubID)
	}
	return ""
}

type accountResponse struct {
	ID          string      `json:"_id"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"email"`
	AvatarImage string      `json:"avatarImage"`
	Role        domain.Role `json:"role"`
}

// ProviderLogin maneja POST /auth/{provider}-login.
func (h *AuthHandler) ProviderLogin(provider string) gin.HandlerFunc {
	label, ok := providerLabels[provider]
	if !ok {
		label = provider
	}
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid login request", zap.String("provider", provider), zap.Error(err))
			respondError(c, http.StatusBadRequest, "invalid request")
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			respondError(c, http.StatusBadRequest, "Email is required")
			return
		}
		providerID := req.providerID(provider)
		if providerID == "" {
			respondError(c, http.StatusBadRequest, label+" ID is required")
			return
		}

		account, err := h.resolver.Resolve(c.Request.Context(), service.Assertion{
			Email:      req.Email,
			Name:       req.Name,
			Picture:    req.Picture,
			Provider:   provider,
			ProviderID: providerID,
		})
		if err != nil {
			if errors.Is(err, service.ErrInvalidAssertion) {
				respondError(c, http.StatusBadRequest, "invalid login data")
				return
			}
			h.logger.Error("login failed", zap.String("provider", provider), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		token, err := h.tokens.Mint(account.ID, account.Role)
		if err != nil {
			h.logger.Error("token mint failed", zap.String("provider", provider), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": label + " login successful",
			"data": accountResponse{
				ID:          account.ID,
				FullName:    account.FullName,
				Email:       account.Email,
				AvatarImage: account.AvatarImage,
				Role:        account.Role,
			},
			"token": token,
		})
	}
}
