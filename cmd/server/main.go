package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	googleauth "finbook/internal/auth/google"
	"finbook/internal/config"
	noopmail "finbook/internal/email/noop"
	sesmail "finbook/internal/email/ses"
	"finbook/internal/handler"
	"finbook/internal/port"
	"finbook/internal/repository/postgres"
	"finbook/internal/router"
	"finbook/internal/service"
	noopsms "finbook/internal/sms/noop"
	twiliosms "finbook/internal/sms/twilio"
	s3storage "finbook/internal/storage/s3"
)

// @title Finbook API
// @version 1.0
// @description Invoicing, bank statement and document backend for small businesses.
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	businessRepo := postgres.NewBusinessRepo(db)
	userRepo := postgres.NewUserRepo(db)
	otpRepo := postgres.NewOTPRepo(db)
	clientRepo := postgres.NewClientRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	recurringRepo := postgres.NewRecurringRepo(db)
	statementRepo := postgres.NewStatementRepo(db)
	txnRepo := postgres.NewTransactionRepo(db)
	ruleRepo := postgres.NewCategoryRuleRepo(db)
	folderRepo := postgres.NewFolderRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)
	fxRepo := postgres.NewExchangeRateRepo(db)
	idempotencyRepo := postgres.NewIdempotencyRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Outbound delivery adapters
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = sesmail.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noopmail.NewNoopSender()
	}

	var smsSender port.SMSSender
	switch cfg.SMS.Provider {
	case "twilio":
		smsSender = twiliosms.NewTwilioSender(&cfg.SMS)
	default:
		smsSender = noopsms.NewNoopSender()
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, businessRepo, cfg.JWT)
	otpSvc := service.NewOTPService(otpRepo, userRepo, businessRepo, smsSender, emailSender, authSvc, cfg.OTP)
	businessSvc := service.NewBusinessService(businessRepo, userRepo)
	clientSvc := service.NewClientService(clientRepo, invoiceRepo)
	fxSvc := service.NewFxService(fxRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, clientRepo, businessRepo, fxRepo, idempotencyRepo, emailSender)
	recurringSvc := service.NewRecurringService(recurringRepo, invoiceRepo, invoiceSvc)
	statementSvc := service.NewStatementService(statementRepo, txnRepo, ruleRepo, s3Client, cfg.S3)
	fileSvc := service.NewFileService(folderRepo, fileRepo, s3Client, cfg.S3)
	reportSvc := service.NewReportService(invoiceRepo, clientRepo, businessRepo)

	var socialAuthSvc service.SocialAuthService
	if cfg.Google.ClientID != "" {
		verifier := googleauth.NewVerifier(cfg.Google.ClientID)
		socialAuthSvc = service.NewSocialAuthService(verifier, userRepo, businessRepo, authSvc)
	}

	// Background workers
	runner := service.NewRecurringRunner(recurringRepo, recurringSvc, service.RecurringRunnerConfig{
		CronSpec:   cfg.Scheduler.CronSpec,
		RunOnStart: cfg.Scheduler.RunOnStart,
		BatchSize:  cfg.Scheduler.BatchSize,
	})
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start recurring runner: %w", err)
	}
	defer runner.Stop()

	worker := service.NewParseQueueWorker(statementRepo, statementSvc, service.ParseQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	// Initialize handlers
	h := router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc, otpSvc, socialAuthSvc),
		Business:  handler.NewBusinessHandler(businessSvc),
		Client:    handler.NewClientHandler(clientSvc),
		Invoice:   handler.NewInvoiceHandler(invoiceSvc, recurringSvc),
		Recurring: handler.NewRecurringHandler(recurringSvc),
		Statement: handler.NewStatementHandler(statementSvc),
		File:      handler.NewFileHandler(fileSvc),
		Fx:        handler.NewFxHandler(fxSvc),
		Report:    handler.NewReportHandler(reportSvc),
		Health:    handler.NewHealthHandler(db),
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Setup(cfg, authSvc, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone

	return nil
}
