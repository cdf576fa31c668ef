package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"debate-tab/internal/auth"
	"debate-tab/internal/config"
	"debate-tab/internal/handlers"
	"debate-tab/internal/repository"
	"debate-tab/internal/services"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173", // Vite dev server
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// NewRouter wires repositories, services and handlers onto a gin engine
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	repo := repository.NewRepository(db)

	// Initialize services
	actionLogService := services.NewActionLogService(repo)
	allocationService := services.NewAllocationService(repo, cfg.Allocator, actionLogService)
	drawService := services.NewDrawService(repo, actionLogService)
	divisionService := services.NewDivisionService(repo, actionLogService, cfg.App.DivisionSize)
	adjudicatorService := services.NewAdjudicatorService(repo, actionLogService)

	// Initialize handlers
	allocationHandler := handlers.NewAllocationHandler(allocationService)
	drawHandler := handlers.NewDrawHandler(drawService)
	divisionHandler := handlers.NewDivisionHandler(divisionService)
	adjudicatorHandler := handlers.NewAdjudicatorHandler(adjudicatorService, actionLogService)

	router := gin.Default()

	allowedOrigins := append([]string{}, defaultOrigins...)
	if cfg.Server.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.Server.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	admin := router.Group("/api/admin")
	admin.Use(auth.AdminMiddleware())

	rounds := admin.Group("/rounds/:round_id")
	{
		// Adjudicator allocation
		rounds.POST("/allocation", allocationHandler.CreateAllocation)
		rounds.GET("/allocation", allocationHandler.GetAllocation)
		rounds.PUT("/allocation", allocationHandler.SaveAllocation)
		rounds.GET("/conflicts", allocationHandler.GetConflicts)

		// Draw management
		rounds.POST("/draw/confirm", drawHandler.ConfirmDraw)
		rounds.POST("/draw/release", drawHandler.ReleaseDraw)
		rounds.POST("/draw/unrelease", drawHandler.UnreleaseDraw)
		rounds.POST("/debates/:debate_id/importance", drawHandler.UpdateDebateImportance)
		rounds.GET("/availability/adjudicators", drawHandler.GetAvailability)
		rounds.PUT("/availability/adjudicators", drawHandler.SetAvailability)
		rounds.POST("/availability/adjudicators/copy", drawHandler.CopyAvailability)
		rounds.PUT("/venues", drawHandler.SaveVenues)
		rounds.POST("/start-time", drawHandler.SetStartTime)
	}

	tournaments := admin.Group("/tournaments/:tournament_id")
	{
		// Divisions
		tournaments.POST("/divisions/allocate", divisionHandler.CreateDivisionAllocation)
		tournaments.GET("/divisions", divisionHandler.ListDivisions)
		tournaments.PUT("/divisions", divisionHandler.SaveDivisions)

		// Adjudicator feedback
		tournaments.GET("/adjudicators/scores", adjudicatorHandler.ListScores)
		tournaments.POST("/adjudicators/:adj_id/test-score", adjudicatorHandler.SetTestScore)
		tournaments.POST("/adjudicators/:adj_id/note", adjudicatorHandler.SetNote)

		tournaments.GET("/logs", adjudicatorHandler.GetActionLogs)
	}

	return router
}
