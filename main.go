package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	api "email-sorter-backend/cmd/api"
	accountdomain "email-sorter-backend/internal/account/domain"
	accountRepo "email-sorter-backend/internal/account/repository"
	emaildomain "email-sorter-backend/internal/email/domain"
	emailRepo "email-sorter-backend/internal/email/repository"
	"email-sorter-backend/internal/queue"
	"email-sorter-backend/internal/worker"
	"email-sorter-backend/pkg/ai"
	"email-sorter-backend/pkg/browser"
	"email-sorter-backend/pkg/config"
	"email-sorter-backend/pkg/database"
	"email-sorter-backend/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if cfg.EncryptionKey == "" {
		log.Fatal("ENCRYPTION_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&accountdomain.User{},
		&accountdomain.ConnectedAccount{},
		&accountdomain.Category{},
		&emaildomain.Email{},
		&emaildomain.UnsubscribeAttempt{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	accounts := accountRepo.NewAccountRepository(db)
	categories := accountRepo.NewCategoryRepository(db)
	emails := emailRepo.NewEmailRepository(db)
	attempts := emailRepo.NewUnsubscribeAttemptRepository(db)

	// Initialize Gmail service
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)

	// Initialize AI service
	aiService := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)

	// Initialize job queue
	q, err := queue.Connect(cfg.NatsURL)
	if err != nil {
		log.Fatal("Failed to connect to NATS:", err)
	}
	defer q.Close()
	if err := q.EnsureStream(); err != nil {
		log.Fatal("Failed to provision job stream:", err)
	}

	// Each unsubscribe job gets its own browser session.
	newPage := func(ctx context.Context) (browser.Page, func(), error) {
		session, err := browser.NewSession(ctx, browser.DefaultOptions())
		if err != nil {
			return nil, nil, err
		}
		return session, session.Close, nil
	}

	syncProcessor := worker.NewSyncProcessor(accounts, categories, emails, gmailService, aiService, worker.SyncConfig{
		EncryptionKey: cfg.EncryptionKey,
		Window:        cfg.SyncWindow,
		MaxResults:    cfg.SyncMaxResults,
	})
	unsubscribeProcessor := worker.NewUnsubscribeProcessor(emails, attempts, accounts, gmailService, newPage, cfg.EncryptionKey)

	// Start queue consumers. Each blocks until shutdown.
	go func() {
		if err := q.ConsumeSync(ctx, cfg.SyncConcurrency, syncProcessor.Process); err != nil {
			log.Fatal("Sync consumer failed:", err)
		}
	}()
	go func() {
		if err := q.ConsumeUnsubscribe(ctx, unsubscribeProcessor.Process); err != nil {
			log.Fatal("Unsubscribe consumer failed:", err)
		}
	}()

	// Start the periodic sync scheduler
	scheduler := worker.NewScheduler(accounts, q, cfg.SyncInterval)
	scheduler.Start()
	defer scheduler.Stop()

	// Start the ops HTTP surface
	handler := api.NewHandler(q, scheduler)
	go func() {
		log.Printf("Ops server starting on port %s", cfg.Port)
		if err := handler.Start(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
}
