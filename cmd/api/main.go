package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"jobbuddy/career-assistant/internal/config"
	"jobbuddy/career-assistant/internal/handlers"
	"jobbuddy/career-assistant/internal/repositories"
	"jobbuddy/career-assistant/internal/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	docRepo := repositories.NewDocumentRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)
	log.Println("✅ Repositories initialized successfully")

	storageService, err := services.NewStorageFromConfig(ctx, cfg.Storage, services.AllowedResumeExtensions)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	if err := storageService.EnsureReady(ctx); err != nil {
		log.Fatalf("❌ Storage is not ready: %v", err)
	}
	log.Printf("✅ Storage initialized (%s)\n", storageService.Driver())

	geminiService, err := services.NewGeminiService(cfg.Gemini, cfg.Worker.RetryInitialDelay)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	qdrantService, err := services.NewQdrantService(cfg.Qdrant)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if qdrantService != nil {
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Printf("⚠️  Qdrant unavailable, continuing without knowledge base: %v", err)
			qdrantService.Close()
			qdrantService = nil
		} else {
			defer qdrantService.Close()
			log.Println("✅ Qdrant initialized successfully")
		}
	}
	knowledge := services.NewKnowledgeBase(geminiService, qdrantService)

	publisher, err := services.NewEventPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		log.Printf("⚠️  RabbitMQ unavailable, status events disabled: %v", err)
		publisher = services.NoopPublisher{}
	}
	defer publisher.Close()

	analyzerService := services.NewAnalyzerService(
		analysisRepo,
		docRepo,
		storageService,
		services.NewDefaultExtractorRegistry(geminiService),
		geminiService,
		knowledge,
		publisher,
		services.AnalyzerOptions{
			MaxRetries:          cfg.Worker.RetryMaxAttempts,
			ResumeTextLimit:     cfg.Analysis.ResumeTextLimit,
			JobDescriptionLimit: cfg.Analysis.JobDescriptionLimit,
		},
	)
	chatService := services.NewChatService(
		chatRepo,
		services.NewMemorySessionStore(cfg.Session.MaxEntries, cfg.Session.TTL),
		geminiService,
		knowledge,
		cfg.Session.HistoryWindow,
	)
	interviewService := services.NewInterviewService(interviewRepo, geminiService, knowledge, cfg.Worker.RetryMaxAttempts)
	exportService := services.NewExportService(analysisRepo)
	log.Println("✅ Services initialized successfully")

	worker := services.NewWorker(
		analysisRepo,
		analyzerService,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
	)
	worker.Start(ctx)

	app := newApp(cfg, appHandlers{
		analyze: handlers.NewAnalyzeHandler(
			docRepo,
			analysisRepo,
			storageService,
			analyzerService,
			worker,
			cfg.Storage.MaxFileSize,
		),
		result:    handlers.NewResultHandler(analysisRepo, exportService),
		chat:      handlers.NewChatHandler(chatService),
		interview: handlers.NewInterviewHandler(interviewService, cfg.Storage.MaxFileSize),
	})
	log.Println("✅ Handlers initialized")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

type appHandlers struct {
	analyze   *handlers.AnalyzeHandler
	result    *handlers.ResultHandler
	chat      *handlers.ChatHandler
	interview *handlers.InterviewHandler
}

func newApp(cfg *config.Config, h appHandlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "JobBuddy Career Assistant API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/resumes/analyze", h.analyze.HandleAnalyze)
	// Registered before :id so "export" is not read as an id.
	api.Get("/analyses/export", h.result.HandleExport)
	api.Get("/analyses/:id", h.result.HandleGetResult)

	api.Post("/chat", h.chat.HandleChat)
	api.Post("/chat/reset", h.chat.HandleReset)

	api.Post("/interviews", h.interview.HandleStart)
	api.Get("/interviews/:id", h.interview.HandleGet)
	api.Post("/interviews/:id/answers", h.interview.HandleAnswer)
	api.Post("/interviews/:id/summary", h.interview.HandleSummary)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "JobBuddy API is running!",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resumes/analyze",
				"GET /api/v1/analyses/:id",
				"GET /api/v1/analyses/export",
				"POST /api/v1/chat",
				"POST /api/v1/chat/reset",
				"POST /api/v1/interviews",
				"GET /api/v1/interviews/:id",
				"POST /api/v1/interviews/:id/answers",
				"POST /api/v1/interviews/:id/summary",
			},
		})
	})

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
