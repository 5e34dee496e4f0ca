package http

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

// BlogHandler mantiene dependencias para endpoints de blogs.
type BlogHandler struct {
	logger *zap.Logger
	blogs  repository.BlogRepository
}

// NewBlogHandler crea una instancia de BlogHandler con dependencias necesarias.
func NewBlogHandler(logger *zap.Logger, blogs repository.BlogRepository) *BlogHandler {
	return &BlogHandler{
		logger: logger,
		blogs:  blogs,
	}
}

type blogListMeta struct {
	TotalBlogs int `json:"totalBlogs"`
	domain.PageMeta
}

// CreateBlog maneja POST /api/v1/blogs.
func (h *BlogHandler) CreateBlog(c *gin.Context) {
	var req struct {
		Slug       string `json:"slug"`
		AuthorName string `json:"authorName"`
		Banner     string `json:"banner"`
		Title      string `json:"title" binding:"required"`
		SubTitle   string `json:"subTitle"`
		Content    string `json:"content"`
		ReadTime   string `json:"readTime"`
		Published  bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create blog request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	slug := slugify(req.Slug)
	if slug == "" {
		slug = slugify(req.Title)
	}
	if slug == "" {
		respondError(c, http.StatusBadRequest, "slug is required")
		return
	}

	now := time.Now().UTC()
	blog := domain.Blog{
		ID:         uuid.NewString(),
		Slug:       slug,
		AuthorName: strings.TrimSpace(req.AuthorName),
		Banner:     strings.TrimSpace(req.Banner),
		Title:      strings.TrimSpace(req.Title),
		SubTitle:   strings.TrimSpace(req.SubTitle),
		Content:    req.Content,
		ReadTime:   strings.TrimSpace(req.ReadTime),
		Active:     true,
		Published:  req.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.blogs.Create(c.Request.Context(), blog); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			respondError(c, http.StatusConflict, "blog slug already exists")
			return
		}
		h.logger.Error("create blog failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not create blog")
		return
	}
	respondOK(c, http.StatusCreated, "Blog Created Successfully", blog)
}

// ListBlogs maneja GET /api/v1/blogs.
func (h *BlogHandler) ListBlogs(c *gin.Context) {
	ctx := c.Request.Context()
	q := pageQuery(c)

	blogs, filtered, err := h.blogs.List(ctx, q)
	if err != nil {
		h.logger.Error("list blogs failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list blogs")
		return
	}
	total, err := h.blogs.Count(ctx)
	if err != nil {
		h.logger.Error("count blogs failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list blogs")
		return
	}
	if blogs == nil {
		blogs = []domain.Blog{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Blogs Fetched Successfully",
		"meta": blogListMeta{
			TotalBlogs: total,
			PageMeta:   domain.NewPageMeta(q, filtered, len(blogs)),
		},
		"data": blogs,
	})
}

// GetBlog maneja GET /api/v1/blogs/:slug.
func (h *BlogHandler) GetBlog(c *gin.Context) {
	slug := c.Param("slug")
	blog, err := h.blogs.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Blog not found")
			return
		}
		h.logger.Error("get blog failed", zap.String("slug", slug), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not get blog")
		return
	}
	respondOK(c, http.StatusOK, "Blog Fetched Successfully", blog)
}

// UpdateBlog maneja PUT /api/v1/blogs/:id.
func (h *BlogHandler) UpdateBlog(c *gin.Context) {
	var req struct {
		Slug       *string `json:"slug"`
		AuthorName *string `json:"authorName"`
		Banner     *string `json:"banner"`
		Title      *string `json:"title"`
		SubTitle   *string `json:"subTitle"`
		Content    *string `json:"content"`
		ReadTime   *string `json:"readTime"`
		Active     *bool   `json:"active"`
		Published  *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update blog request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	blog, err := h.blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Cannot find blog with Id "+id)
			return
		}
		h.logger.Error("get blog failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not update blog")
		return
	}

	if req.Slug != nil {
		slug := slugify(*req.Slug)
		if slug == "" {
			respondError(c, http.StatusBadRequest, "slug is required")
			return
		}
		blog.Slug = slug
	}
	setTrimmed(&blog.AuthorName, req.AuthorName)
	setTrimmed(&blog.Banner, req.Banner)
	setTrimmed(&blog.Title, req.Title)
	setTrimmed(&blog.SubTitle, req.SubTitle)
	setTrimmed(&blog.ReadTime, req.ReadTime)
	if req.Content != nil {
		blog.Content = *req.Content
	}
	if req.Active != nil {
		blog.Active = *req.Active
	}
	if req.Published != nil {
		blog.Published = *req.Published
	}
	blog.UpdatedAt = time.Now().UTC()

	if err := h.blogs.Update(ctx, blog); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateSlug):
			respondError(c, http.StatusConflict, "blog slug already exists")
		case errors.Is(err, pgx.ErrNoRows):
			respondError(c, http.StatusNotFound, "Cannot find blog with Id "+id)
		default:
			h.logger.Error("update blog failed", zap.String("id", id), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "could not update blog")
		}
		return
	}
	respondOK(c, http.StatusOK, "Blog Updated Successfully", blog)
}

// DeleteBlog maneja DELETE /api/v1/blogs/:id.
func (h *BlogHandler) DeleteBlog(c *gin.Context) {
	id := c.Param("id")
	if err := h.blogs.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "cannot find any blog with ID "+id)
			return
		}
		h.logger.Error("delete blog failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not delete blog")
		return
	}
	respondOK(c, http.StatusOK, "Blog Deleted Successfully", []any{})
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// slugify deja solo letras/dígitos en minúscula separados por un guion.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
