package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions agrupa middlewares y chequeos opcionales del router.
type RouterOptions struct {
	RateLimiter gin.HandlerFunc
	EnableHSTS  bool
	Health      HealthFunc
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	tokens TokenVerifier,
	authH *AuthHandler,
	userH *UserHandler,
	blogH *BlogHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), securityHeaders(opts.EnableHSTS))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter)
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello world, welcome to the blog API")
	})
	r.GET("/healthz", healthHandler(opts.Health))

	auth := r.Group("/auth")
	for provider := range providerLabels {
		auth.POST("/"+provider+"-login", authH.ProviderLogin(provider))
	}

	requireAuth := RequireAuth(tokens)
	requireAdmin := RequireAdmin(tokens)

	users := r.Group("/api/v1/users")
	users.GET("", requireAdmin, userH.ListUsers)
	users.GET("/profile", requireAuth, userH.GetProfile)
	users.GET("/:id", requireAuth, userH.GetUser)
	users.PUT("/:id", requireAdmin, userH.UpdateUser)
	users.DELETE("/:id", requireAdmin, userH.DeleteUser)

	blogs := r.Group("/api/v1/blogs")
	blogs.GET("", blogH.ListBlogs)
	blogs.GET("/:slug", blogH.GetBlog)
	blogs.POST("", requireAdmin, blogH.CreateBlog)
	blogs.PUT("/:id", requireAdmin, blogH.UpdateBlog)
	blogs.DELETE("/:id", requireAdmin, blogH.DeleteBlog)

	return r
}

func healthHandler(check HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				respondError(c, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
