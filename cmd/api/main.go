package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"

	"github.com/RostislavDaniliv/eddy-school/internal/handlers"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/services"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/config"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/database"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"

	_ "github.com/RostislavDaniliv/eddy-school/docs"
)

// @title Eddy School API
// @version 1.0
// @description Multi-tenant chatbot backend: document-grounded answering over Google Docs and uploaded files, delivered through SendPulse or SmartSender
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting eddy-school api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	buRepo := repositories.NewBusinessUnitRepo(db.GORM)
	docRepo := repositories.NewDocumentRepo(db.GORM)
	faqRepo := repositories.NewSimpleQuestionRepo(db.GORM)
	historyRepo := repositories.NewChatHistoryRepo(db.GORM)
	testUserRepo := repositories.NewTestUserRepo(db.GORM)

	// Init services
	answerService := services.NewAnswerService(cfg, buRepo, docRepo, faqRepo, historyRepo, testUserRepo)

	scheduler := services.NewScheduler(cfg, buRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Init handlers
	answerHandler := handlers.NewAnswerHandler(answerService)
	businessUnitHandler := handlers.NewBusinessUnitHandler(buRepo)
	documentHandler := handlers.NewDocumentHandler(docRepo)
	healthHandler := handlers.NewHealthHandler()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Eddy School API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	app.Get("/health", healthHandler.Health)

	// Answering route
	app.Post("/api/1.0/answering_gpt/", answerHandler.Answer)

	// Business unit routes
	app.Post("/api/1.0/business_unit/create/", businessUnitHandler.Create)
	app.Put("/api/1.0/business_unit/update/:id", businessUnitHandler.Update)
	app.Delete("/api/1.0/business_unit/update/:id", businessUnitHandler.Delete)
	app.Put("/api/1.0/business_unit/suspend/:id", businessUnitHandler.Suspend)

	// Document routes
	app.Post("/api/1.0/document/create/", documentHandler.Create)
	app.Put("/api/1.0/document/update/:id", documentHandler.Update)
	app.Delete("/api/1.0/document/update/:id", documentHandler.Delete)

	log.Printf("✅ eddy-school api running at :%s", cfg.Port)
	log.Printf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
