package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/cache"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/config"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/constants"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/database"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/handlers"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/middleware"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Redis client for the task list cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = false
	r.Use(cors.New(corsConfig))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                  // Redis pool size
		"tcp",               // network type
		cfg.Redis.Addr,      // Redis address from config
		"",                  // username (empty for default user)
		cfg.Redis.Password,  // password
		[]byte(cfg.Session.Secret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	userTaskRepo := repository.NewUserTaskRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	groupTaskRepo := repository.NewGroupTaskRepository(db)

	// Services
	taskCache := cache.NewUserTaskCache(rdb, cfg.Redis.CacheTTL)
	authService := services.NewAuthService(userRepo)
	userTaskService := services.NewUserTaskService(userTaskRepo, userRepo, taskCache)
	membershipService := services.NewMembershipService(groupRepo, userRepo)
	groupTaskService := services.NewGroupTaskService(groupTaskRepo, groupRepo)
	relationService := services.NewRelationService(groupTaskRepo, groupRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userTaskHandler := handlers.NewUserTaskHandler(userTaskService)
	groupHandler := handlers.NewGroupHandler(membershipService)
	groupTaskHandler := handlers.NewGroupTaskHandler(groupTaskService)
	relationHandler := handlers.NewRelationHandler(relationService)

	requireAuth := middleware.RequireAuth(userRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "To-do list API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.PATCH("/me", requireAuth, authHandler.UpdateCurrentUser)
		}

		// Personal task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", userTaskHandler.ListTasks)
			tasks.POST("", userTaskHandler.CreateTask)
			tasks.GET("/:id", userTaskHandler.GetTask)
			tasks.PATCH("/:id", userTaskHandler.UpdateTask)
			tasks.DELETE("/:id", userTaskHandler.DeleteTask)
			tasks.POST("/:id/close", userTaskHandler.CloseTask)
			tasks.POST("/:id/reissue", userTaskHandler.ReissueTask)
		}

		// Group routes (protected)
		groups := api.Group("/groups")
		groups.Use(requireAuth)
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.GET("/:id", groupHandler.GetGroup)
			groups.PATCH("/:id", groupHandler.UpdateGroup)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
			groups.GET("/:id/members", groupHandler.ListMembers)
			groups.POST("/:id/members", groupHandler.CreateMember)
			groups.GET("/:id/tasks", groupTaskHandler.ListTasks)
			groups.POST("/:id/tasks", groupTaskHandler.CreateTask)
		}

		// Membership routes (protected)
		members := api.Group("/members")
		members.Use(requireAuth)
		{
			members.GET("/:id", groupHandler.GetMember)
			members.PATCH("/:id", groupHandler.UpdateMember)
			members.DELETE("/:id", groupHandler.DeleteMember)
		}

		// Group task routes (protected)
		groupTasks := api.Group("/group-tasks")
		groupTasks.Use(requireAuth)
		{
			groupTasks.GET("/:id", groupTaskHandler.GetTask)
			groupTasks.PATCH("/:id", groupTaskHandler.UpdateTask)
			groupTasks.DELETE("/:id", groupTaskHandler.DeleteTask)
			groupTasks.POST("/:id/close", groupTaskHandler.CloseTask)
			groupTasks.POST("/:id/reissue", groupTaskHandler.ReissueTask)
			groupTasks.GET("/:id/relations", relationHandler.ListRelations)
			groupTasks.POST("/:id/relations", relationHandler.CreateRelation)
		}

		// Relation routes (protected)
		relations := api.Group("/relations")
		relations.Use(requireAuth)
		{
			relations.GET("/:id", relationHandler.GetRelation)
			relations.PATCH("/:id", relationHandler.UpdateRelation)
			relations.DELETE("/:id", relationHandler.DeleteRelation)
		}

		// Staff routes (protected, staff only)
		staff := api.Group("/staff")
		staff.Use(requireAuth, middleware.RequireStaff())
		{
			staff.GET("/users/:id/tasks", userTaskHandler.ListTasksForUser)
			staff.POST("/users/:id/tasks", userTaskHandler.CreateTaskForUser)
			staff.GET("/users/:id/groups", groupHandler.ListGroupsForUser)
		}
	}

	// Start server
	addr := ":" + cfg.HTTP.Port
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
