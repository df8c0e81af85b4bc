package server

import (
	"time"

	"social-calendar/domain/repository"
	httpHandler "social-calendar/interfaces/http"
	"social-calendar/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	healthHandler httpHandler.IHealthHandler,
	publisherHandler httpHandler.IPublisherHandler,
	tokenHandler httpHandler.ITokenHandler,
	accountHandler httpHandler.ISocialAccountHandler,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://app.social-calendar.io", "https://admin.social-calendar.io", "http://localhost:4200", "https://localhost:4200"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.POST("/healthz", healthHandler.Healthz)

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	// Publishing pipeline. Run and the token sweep are hit by the external
	// scheduler, everything else by the calendar UI.
	api.POST("/publisher/run", publisherHandler.Run)
	api.POST("/drafts/:draftId/schedule", publisherHandler.Schedule)
	api.POST("/drafts/:draftId/retry", publisherHandler.Retry)
	api.GET("/drafts/:draftId/jobs", publisherHandler.ListJobs)

	// Token lifecycle.
	api.POST("/tokens/expiry-sweep", tokenHandler.ExpirySweep)
	api.POST("/brands/:brandId/token-health", tokenHandler.HealthCheck)
	api.GET("/brands/:brandId/accounts", accountHandler.ListAccounts)

	return router
}
