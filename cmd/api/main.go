package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanguardcontact/data-server/internal/config"
	"github.com/vanguardcontact/data-server/internal/infra/database"
	"github.com/vanguardcontact/data-server/internal/infra/directory"
	"github.com/vanguardcontact/data-server/internal/infra/http/handlers"
	appmw "github.com/vanguardcontact/data-server/internal/infra/http/middleware"
	"github.com/vanguardcontact/data-server/internal/infra/mail"
	"github.com/vanguardcontact/data-server/internal/infra/queue"
	"github.com/vanguardcontact/data-server/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitURL(), cfg.CampaignID)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories, each storage call bounded by the execution timeout
	statusRepo := usecase.NewBoundedStatusStore(database.NewContactStatusRepository(db), cfg.DBTimeout)
	contactRepo := usecase.NewBoundedContactRepository(database.NewContactRepository(db), cfg.DBTimeout)
	actionRepo := usecase.NewBoundedActionRepository(database.NewContactActionRepository(db), cfg.DBTimeout)
	errorRepo := usecase.NewBoundedErrorRepository(database.NewAppErrorRepository(db), cfg.DBTimeout)

	// 2. Producers and recorders
	producer := queue.NewProducer(rabbitMQ.Ch)
	errorRecorder := usecase.NewErrorRecorder(errorRepo, producer)
	actionRecorder := usecase.NewActionRecorder(actionRepo, producer, errorRecorder)

	// 3. Collaborating services
	directoryClient := directory.NewClient(cfg.DirectoryURL, cfg.DirectoryToken)

	var mailer usecase.MailerInterface
	if cfg.MailHost != "" {
		mailer = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailUser)
	}

	// 4. UseCases
	policy := usecase.NewCooldownPolicy(cfg.Cooldown)
	pool := usecase.NewQueuePool(contactRepo, cfg.QueueBatchSize)

	allocateUC := usecase.NewAllocateContactUseCase(pool, statusRepo, actionRecorder, errorRecorder, cfg.LeaseWindow)
	outcomeUC := usecase.NewRecordOutcomeUseCase(policy, statusRepo, contactRepo, actionRecorder, errorRecorder, mailer, cfg.ReviewNotifyEmail)
	replayUC := usecase.NewReplayUseCase(cfg.CampaignID, policy, statusRepo, errorRecorder)

	// 5. Background consumer: replays the other campaigns' broadcasts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := queue.NewListener(rabbitMQ.Ch, replayUC, errorRecorder)
	if err := listener.Start(ctx, rabbitMQ.QueueName); err != nil {
		log.Fatal(err)
	}

	// 6. Handlers and router
	contactHandler := handlers.NewContactHandler(directoryClient, allocateUC)
	responseHandler := handlers.NewResponseHandler(directoryClient, outcomeUC, allocateUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, cfg.DirectoryURL)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(appmw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/contacts", contactHandler.Handle)
	r.Post("/contact-responses", responseHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	log.Printf("data-server for campaign %d listening on %s", cfg.CampaignID, addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
