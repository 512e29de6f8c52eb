package main

import (
	"log"
	"net/http"
	"os"

	"book-catalog-api/config"
	"book-catalog-api/handlers"
	"book-catalog-api/middleware"
	"book-catalog-api/models"
	"book-catalog-api/repositories"
	"book-catalog-api/services"
	"book-catalog-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	db := config.InitDB()

	// Initialize PDF storage
	pdfStore, err := storage.NewPDFStore(config.PDFStorageDir())
	if err != nil {
		log.Fatal("Failed to initialize PDF storage:", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	authorRepo := repositories.NewAuthorRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	authorService := services.NewAuthorService(authorRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	itemService := services.NewItemService(itemRepo, ratingRepo, authorRepo, categoryRepo, pdfStore)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	authorHandler := handlers.NewAuthorHandler(authorService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	itemHandler := handlers.NewItemHandler(itemService)

	// Setup router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-CSRF-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Stored book files
	router.Static("/pdfs", pdfStore.BasePath())

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		protected.Use(middleware.CSRFMiddleware())
		{
			// Profile
			protected.GET("/profile", authHandler.GetProfile)

			// Items (books)
			items := protected.Group("/items")
			{
				items.GET("", itemHandler.GetItems)
				items.GET("/:id", itemHandler.GetItemDetails)
				items.POST("", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), itemHandler.CreateItem)
				items.PUT("/:id", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), itemHandler.UpdateItem)
				items.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), itemHandler.DeleteItem)
				items.POST("/:id/rate", itemHandler.RateItem)
				items.POST("/:id/download", itemHandler.DownloadPdf)
				items.POST("/check-duplicate", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), itemHandler.CheckDuplicate)
				items.GET("/export", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), itemHandler.ExportItems)
			}

			// Individual ratings, admin only
			protected.GET("/ratings", middleware.RequireRole(models.RoleAdmin), itemHandler.GetRatings)

			// Authors
			authors := protected.Group("/authors")
			{
				authors.GET("", authorHandler.GetAuthors)
				authors.GET("/statistics", authorHandler.GetStatistics)
				authors.GET("/export", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), authorHandler.ExportAuthors)
				authors.GET("/:id", authorHandler.GetAuthor)
				authors.POST("", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), authorHandler.CreateAuthor)
				authors.PUT("/:id", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), authorHandler.UpdateAuthor)
				authors.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), authorHandler.DeleteAuthor)
				authors.POST("/search", authorHandler.SearchAuthors)
				authors.POST("/sort", authorHandler.SortAuthors)
				authors.POST("/bulk-delete", middleware.RequireRole(models.RoleAdmin), authorHandler.BulkDelete)
			}

			// Categories
			categories := protected.Group("/categories")
			{
				categories.GET("", categoryHandler.GetCategories)
				categories.GET("/:id", categoryHandler.GetCategory)
				categories.POST("", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), categoryHandler.CreateCategory)
				categories.PUT("/:id", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), categoryHandler.UpdateCategory)
				categories.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), categoryHandler.DeleteCategory)
			}
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
