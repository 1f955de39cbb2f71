package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"tradelens-backend/config"
	_ "tradelens-backend/docs" // This will be created by swag
	"tradelens-backend/internal/aggregate"
	"tradelens-backend/internal/controller"
	"tradelens-backend/internal/scheduler"
	"tradelens-backend/internal/service"
	"tradelens-backend/internal/session"
	"tradelens-backend/internal/store"
)

// @title           TradeLens API
// @version         1.0
// @description     Conversational analytics over trade transaction data. Ask questions in natural language; the service iteratively translates them into filtered, aggregated queries against in-memory datasets and validates the results before answering.

// @contact.name   API Support Team
// @contact.url    http://www.example.com/support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @tag.name         query
// @tag.description  Natural language question answering

// @tag.name         datasets
// @tag.description  Dataset snapshot management and summaries

// @tag.name         sessions
// @tag.description  Iterative query session inspection

func main() {
	app := fx.New(
		// Core Dependencies
		fx.Provide(
			NewConfig,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			NewDatasetStore,
			store.NewInMemoryConversationStore,
			session.NewInMemoryRegistry,
			service.NewGeminiLLMService,
			service.NewQueryService,
			service.NewDatasetService,
			controller.NewQueryController,
			controller.NewDatasetController,
			controller.NewSessionController,
		),
		fx.Invoke(
			RegisterAPIRoutes,
			RegisterScheduler,
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second) // Timeout for startup
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	// Initiate shutdown
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second) // Timeout for graceful shutdown
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}
	log.Info().Msg("Shutdown complete. Exiting.")
}

func NewConfig() (*config.Config, error) {
	return config.NewConfig()
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Add your frontend URLs
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// --- Factory Functions ---

func NewDatasetStore(cfg *config.Config) store.DatasetStore {
	return store.NewInMemoryDatasetStore(aggregate.CacheFields{
		Company:  cfg.Dataset.CompanyField,
		Category: cfg.Dataset.CategoryField,
		Country:  cfg.Dataset.CountryField,
		Value:    cfg.Dataset.ValueField,
		Date:     cfg.Dataset.DateField,
	})
}

// --- Invoker Functions ---

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	queryController *controller.QueryController,
	datasetController *controller.DatasetController,
	sessionController *controller.SessionController,
) {
	controller.RegisterQueryRoutes(router, queryController)
	controller.RegisterDatasetRoutes(router, datasetController)
	controller.RegisterSessionRoutes(router, sessionController)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, registry session.Registry) {
	scheduler.NewScheduler(lc, cfg, registry)
}
