// Package httpapi exposes the application over HTTP using Gin. Handlers
// translate between JSON bodies and the service layer; sentinel errors are
// mapped to status codes here and nowhere else.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/alivecn/funarcade/internal/logging"
	"github.com/alivecn/funarcade/internal/server/auth"
	"github.com/alivecn/funarcade/internal/server/config"
	"github.com/alivecn/funarcade/internal/server/models"
)

// UserProvider is the slice of the user service the transport needs.
type UserProvider interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, avatar, activeSkin *string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// PostProvider is the slice of the post service the transport needs.
type PostProvider interface {
	List(ctx context.Context) ([]*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, claims *auth.Claims, title, content string) (*models.Post, error)
	Update(ctx context.Context, claims *auth.Claims, id, title, content string) (*models.Post, error)
	Delete(ctx context.Context, claims *auth.Claims, id string) error
	AddComment(ctx context.Context, claims *auth.Claims, id, content string) (*models.Post, error)
}

// AvatarProvider hands out presigned urls for avatar images.
type AvatarProvider interface {
	PresignAvatarUpload(ctx context.Context) (string, string, error)
	PresignAvatarGet(ctx context.Context, key string) (string, error)
}

type HTTPServer struct {
	address            string
	logger             logging.Logger
	users              UserProvider
	posts              PostProvider
	avatars            AvatarProvider
	jwtSecret          []byte
	corsAllowedOrigins string
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserProvider, ps PostProvider, as AvatarProvider) *HTTPServer {
	return &HTTPServer{
		address:            cfg.EndpointAddr,
		logger:             l.With("module", "http_server"),
		users:              us,
		posts:              ps,
		avatars:            as,
		jwtSecret:          []byte(cfg.SecretKey),
		corsAllowedOrigins: cfg.CORSAllowedOrigins,
	}
}

// Engine builds the router with CORS, the public endpoints and the
// token-gated groups.
func (s *HTTPServer) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(s.corsAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", s.handleRegister)
			authRoutes.POST("/login", s.handleLogin)

			me := authRoutes.Group("/me", s.RequireAuth())
			{
				me.GET("", s.handleGetMe)
				me.PUT("", s.handleUpdateMe)
				me.DELETE("", s.handleDeleteMe)
				me.POST("/avatar-upload", s.handleAvatarUpload)
				me.GET("/avatar-url", s.handleAvatarURL)
			}
		}

		postRoutes := api.Group("/posts")
		{
			postRoutes.GET("", s.handleListPosts)
			postRoutes.GET("/:id", s.handleGetPost)

			authed := postRoutes.Group("", s.RequireAuth())
			{
				authed.POST("", s.handleCreatePost)
				authed.PUT("/:id", s.handleUpdatePost)
				authed.DELETE("/:id", s.handleDeletePost)
				authed.POST("/:id/comments", s.handleAddComment)
			}
		}
	}

	return router
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Engine(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
