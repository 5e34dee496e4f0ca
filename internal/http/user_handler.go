package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	accounts repository.AccountRepository
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, accounts repository.AccountRepository) *UserHandler {
	return &UserHandler{
		logger:   logger,
		accounts: accounts,
	}
}

type userListMeta struct {
	TotalUsers    int `json:"totalUsers"`
	TotalStudents int `json:"totalStudents"`
	TotalAdmins   int `json:"totalAdmins"`
	domain.PageMeta
}

// ListUsers maneja GET /api/v1/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	q := pageQuery(c)

	users, filtered, err := h.accounts.List(ctx, q)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list users")
		return
	}
	totalUsers, err := h.accounts.Count(ctx)
	if err != nil {
		h.logger.Error("count users failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list users")
		return
	}
	totalStudents, err := h.accounts.CountByRole(ctx, domain.RoleUser)
	if err != nil {
		h.logger.Error("count users failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list users")
		return
	}
	totalAdmins, err := h.accounts.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		h.logger.Error("count users failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list users")
		return
	}
	if users == nil {
		users = []domain.Account{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Users Fetched Successfully",
		"meta": userListMeta{
			TotalUsers:    totalUsers,
			TotalStudents: totalStudents,
			TotalAdmins:   totalAdmins,
			PageMeta:      domain.NewPageMeta(q, filtered, len(users)),
		},
		"data": users,
	})
}

// GetUser maneja GET /api/v1/users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	h.respondAccount(c, c.Param("id"))
}

// GetProfile maneja GET /api/v1/users/profile con la identidad del token.
func (h *UserHandler) GetProfile(c *gin.Context) {
	identity, ok := IdentityFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.respondAccount(c, identity.AccountID)
}

func (h *UserHandler) respondAccount(c *gin.Context, id string) {
	account, err := h.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get user failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not get user")
		return
	}
	respondOK(c, http.StatusOK, "User Fetched Successfully", account)
}

// UpdateUser maneja PUT /api/v1/users/:id. Es la única vía que cambia el rol.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req struct {
		FullName    *string      `json:"fullName"`
		AvatarImage *string      `json:"avatarImage"`
		Role        *domain.Role `json:"role" binding:"omitempty,role"`
		Active      *bool        `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update user request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	account, err := h.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Cannot find user with ID "+id)
			return
		}
		h.logger.Error("get user failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not update user")
		return
	}

	if req.FullName != nil {
		account.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.AvatarImage != nil {
		account.AvatarImage = strings.TrimSpace(*req.AvatarImage)
	}
	if req.Role != nil {
		account.Role = *req.Role
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	account.UpdatedAt = time.Now().UTC()

	if err := h.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Cannot find user with ID "+id)
			return
		}
		h.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not update user")
		return
	}
	respondOK(c, http.StatusOK, "Profile Updated Successfully", account)
}

// DeleteUser maneja DELETE /api/v1/users/:id.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.accounts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "cannot find any user with ID "+id)
			return
		}
		h.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not delete user")
		return
	}
	respondOK(c, http.StatusOK, "User Deleted Successfully", []any{})
}
