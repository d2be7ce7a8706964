package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"walletflow-service/internal/config"
	"walletflow-service/internal/device"
	"walletflow-service/internal/handler"
	"walletflow-service/internal/ledger"
	"walletflow-service/internal/pkg/id"
	"walletflow-service/internal/repository"
	"walletflow-service/internal/router"
	"walletflow-service/internal/usecase/balance"
	"walletflow-service/internal/usecase/executor"
	"walletflow-service/internal/usecase/rail"
	"walletflow-service/internal/usecase/recipient"
	"walletflow-service/internal/usecase/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func New(cfg config.AppConfig) *http.Server {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	// --- Connect Postgres ---
	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect DB: %v", err)
	}

	// --- Init Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	// --- Ledger client ---
	ledgerClient := ledger.NewClient(cfg.LedgerBaseURL, cfg.LedgerToken, cfg.LedgerTimeout)

	// --- Stores ---
	balanceCache := repository.NewBalanceCache(rdb, 0)
	receiptRepo := repository.NewReceiptRepo(db)

	// --- Usecases ---
	recipientResolver := recipient.NewResolver(ledgerClient, logger)
	railResolver := rail.NewResolver(ledgerClient, logger)
	exec := executor.New(ledgerClient, cfg.ExecuteTimeout, logger)
	reconciler := balance.NewReconciler(ledgerClient, balanceCache, logger)

	// --- Device surfaces ---
	fileShare, err := device.NewFileShare(cfg.UploadDir, "/walletflow/svc/uploads")
	if err != nil {
		log.Fatalf("failed to init share dir: %v", err)
	}
	exporter := device.NewExporter(fileShare, nil, nil, logger)

	// --- Stage event hub ---
	hub := handler.NewHub(logger)

	orch := workflow.NewOrchestrator(workflow.Config{
		Recipients: recipientResolver,
		Rails:      railResolver,
		Executor:   exec,
		Reconciler: reconciler,
		Archive:    receiptRepo,
		Notifier:   hub,
		MintRef:    id.NewClientReference,
		Logger:     logger,
		IdleTTL:    cfg.FlowIdleTTL,
	})
	go orch.RunSweeper(context.Background(), time.Minute)

	// --- Handlers ---
	flowHandler := handler.NewFlowHandler(orch, reconciler, receiptRepo, exporter, logger)

	// --- Router ---
	r := chi.NewRouter()
	r = router.SetupRoutes(r, flowHandler, hub, rdb, []byte(cfg.JWTSecret), cfg.UploadDir).(*chi.Mux)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
