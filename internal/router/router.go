package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/auth"
	"github.com/monocle-dev/taskhub/internal/config"
	"github.com/monocle-dev/taskhub/internal/handlers"
	"github.com/monocle-dev/taskhub/internal/middleware"
	"github.com/monocle-dev/taskhub/internal/ownership"
	"github.com/monocle-dev/taskhub/internal/services"
	"github.com/monocle-dev/taskhub/internal/store"
)

// NewHandler wires the services over st.
func NewHandler(cfg *config.Config, st store.Store) (*handlers.Handler, error) {
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	engine := ownership.NewEngine(st)

	return &handlers.Handler{
		App:         handlers.AppInfo{Name: cfg.App.Name, Version: cfg.App.Version},
		Users:       services.NewUserService(st),
		Auth:        services.NewAuthService(st, tokens),
		Projects:    services.NewProjectService(st, engine),
		Memberships: services.NewMembershipService(st, engine),
		Tasks:       services.NewTaskService(st),
		Comments:    services.NewCommentService(st),
		Files:       services.NewFileService(st),
	}, nil
}

func NewRouter(cfg *config.Config, st store.Store) (*gin.Engine, error) {
	h, err := NewHandler(cfg, st)
	if err != nil {
		return nil, err
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	metrics := middleware.NewMetrics()
	requireAuth := middleware.AuthMiddleware(h.Auth)
	optionalAuth := middleware.OptionalAuth(h.Auth)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), metrics.Middleware())

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", h.Root)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", h.LoginUser)
			authGroup.GET("/me", requireAuth, h.Me)
		}

		users := api.Group("/users")
		{
			users.POST("", h.CreateUser)
			users.GET("", h.ListUsers)
			users.GET("/:user_id", h.GetUser)
			users.PUT("/:user_id", h.UpdateUser)
			users.DELETE("/:user_id", h.DeleteUser)
		}

		projects := api.Group("/projects")
		{
			projects.POST("", optionalAuth, h.CreateProject)
			projects.GET("", requireAuth, h.ListProjects)
			projects.GET("/:project_id", h.GetProject)
			projects.PUT("/:project_id", h.UpdateProject)
			projects.DELETE("/:project_id", h.DeleteProject)
			projects.GET("/user/:user_id/projects", h.ListUserProjects)

			projects.POST("/:project_id/members", h.AddProjectMember)
			projects.GET("/:project_id/members", h.ListProjectMembers)
		}

		memberships := api.Group("/memberships")
		{
			memberships.POST("", h.CreateMembership)
			memberships.GET("", h.ListMemberships)
			memberships.GET("/:membership_id", h.GetMembership)
			memberships.PUT("/:membership_id", h.UpdateMembership)
			memberships.DELETE("/:membership_id", h.DeleteMembership)
			memberships.GET("/user/:user_id/memberships", h.ListUserMemberships)
			memberships.GET("/project/:project_id/memberships", h.ListProjectMemberships)
		}

		tasks := api.Group("/tasks")
		{
			tasks.POST("", h.CreateTask)
			tasks.GET("/:task_id", h.GetTask)
			tasks.PUT("/:task_id", h.UpdateTask)
			tasks.DELETE("/:task_id", h.DeleteTask)
			tasks.GET("/project/:project_id/tasks", h.ListProjectTasks)
			tasks.GET("/user/:user_id/tasks", h.ListUserTasks)
		}

		comments := api.Group("/comments")
		{
			comments.POST("", h.CreateComment)
			comments.GET("", h.ListComments)
			comments.GET("/:comment_id", h.GetComment)
			comments.PUT("/:comment_id", h.UpdateComment)
			comments.DELETE("/:comment_id", h.DeleteComment)
			comments.GET("/project/:project_id/comments", h.ListProjectComments)
			comments.GET("/user/:user_id/comments", h.ListUserComments)
		}

		files := api.Group("/files")
		{
			files.POST("", h.CreateFile)
			files.GET("/:file_id", h.GetFile)
			files.DELETE("/:file_id", h.DeleteFile)
			files.GET("/project/:project_id/files", h.ListProjectFiles)
		}
	}

	return r, nil
}
