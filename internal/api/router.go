package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axellelanca/linkshelf/internal/services"
)

// Services groups the business services the handlers call.
type Services struct {
	Auth        *services.AuthService
	Collections *services.CollectionService
	Links       *services.LinkService
	Users       *services.UserService
}

// Options tunes the middleware chain.
type Options struct {
	RequestTimeout time.Duration
	// LoginLimiter throttles POST /api/auth/login. Nil disables throttling.
	LoginLimiter *RateLimiter
}

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, svc Services, opts Options) {
	router.Use(RequestID(), RequestLogger(), Metrics())

	router.GET("/health", HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", Timeout(opts.RequestTimeout), Authenticate(svc.Auth))
	authed := RequireAuth()

	auth := api.Group("/auth")
	{
		auth.GET("/redirect-uri", RedirectURIHandler(svc.Auth))
		login := []gin.HandlerFunc{LoginHandler(svc.Auth)}
		if opts.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{opts.LoginLimiter.Middleware()}, login...)
		}
		auth.POST("/login", login...)
		auth.GET("/logout-redirect-uri", authed, LogoutRedirectURIHandler(svc.Auth))
		auth.POST("/logout", authed, LogoutHandler(svc.Auth))
	}

	collections := api.Group("/link-collections")
	{
		collections.GET("", authed, ListOwnedCollectionsHandler(svc.Collections))
		collections.POST("", authed, CreateCollectionHandler(svc.Collections))
		collections.GET("/owned-or-all", PublicFeedHandler(svc.Collections))
		collections.GET("/mine", authed, MyFeedHandler(svc.Collections))
		collections.GET("/shared/:token", ResolveShareLinkHandler(svc.Collections))
		collections.POST("/presigned-url-for-thumbnail", authed, PresignThumbnailHandler(svc.Collections))
		collections.GET("/:id", GetCollectionHandler(svc.Collections))
		collections.PUT("/:id", authed, UpdateCollectionHandler(svc.Collections))
		collections.DELETE("/:id", authed, DeleteCollectionHandler(svc.Collections))
		// Anonymous callers reach the service, which answers 403.
		collections.POST("/:id/toggle-like", ToggleLikeHandler(svc.Collections))
		collections.POST("/:id/toggle-bookmark", authed, ToggleBookmarkHandler(svc.Collections))
		collections.POST("/:id/generate-share-link", authed, GenerateShareLinkHandler(svc.Collections))
		collections.DELETE("/:id/share-link", authed, RevokeShareLinkHandler(svc.Collections))
	}

	links := api.Group("/links")
	{
		links.POST("", authed, CreateLinksHandler(svc.Links))
		links.POST("/batch", authed, BatchLinksHandler(svc.Links))
		links.GET("/:id", GetLinkHandler(svc.Links))
		links.PUT("/:id", authed, UpdateLinkHandler(svc.Links))
		links.DELETE("/:id", authed, DeleteLinkHandler(svc.Links))
	}

	users := api.Group("/users", authed)
	{
		users.GET("/me", MeHandler(svc.Users))
		users.PUT("/me", UpdateMeHandler(svc.Users))
		users.POST("/check-nickname", CheckNicknameHandler(svc.Users))
		users.POST("/presigned-url-for-avatar", PresignAvatarHandler(svc.Users))
		users.GET("/bookmark", BookmarkFeedHandler(svc.Collections))
	}
}

// HealthCheckHandler handles the /health route.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
