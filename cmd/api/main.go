package main

import (
	"log"
	"os"

	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Approval Workflow API
// @version         1.0
// @description     Multi-step, area-based approval workflows for recess, termination, hiring, purchase and remuneration requests.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	stepRepo := repository.NewStepRepository(db)
	flowRepo := repository.NewFlowRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	// Services
	userService := service.NewUserService(userRepo)
	areaService := service.NewAreaService(areaRepo, userRepo)
	positionService := service.NewPositionService(positionRepo)
	providerService := service.NewProviderService(providerRepo, areaRepo)
	permissionService := service.NewPermissionService(userRepo, areaRepo)
	flowService := service.NewFlowService(flowRepo, areaRepo, userRepo, auditRepo, txManager)
	approvalService := service.NewApprovalService(stepRepo, requestRepo, providerRepo, areaRepo, auditRepo, flowService, permissionService, txManager, wsHub)
	requestService := service.NewRequestService(requestRepo, providerRepo, areaRepo, userRepo, auditRepo, approvalService, txManager)
	hiringService := service.NewHiringService(requestRepo, providerRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	areaHandler := handler.NewAreaHandler(areaService, permissionService)
	positionHandler := handler.NewPositionHandler(positionService)
	providerHandler := handler.NewProviderHandler(providerService)
	flowHandler := handler.NewFlowHandler(flowService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	requestHandler := handler.NewRequestHandler(requestService, hiringService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	authHandler.RegisterRoutes(root)
	userHandler.RegisterRoutes(root)
	areaHandler.RegisterRoutes(root)
	positionHandler.RegisterRoutes(root)
	providerHandler.RegisterRoutes(root)
	flowHandler.RegisterRoutes(root)
	approvalHandler.RegisterRoutes(root)
	requestHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
