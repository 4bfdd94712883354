package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opdev7/LendTez/internal/auth"
	"github.com/opdev7/LendTez/internal/config"
	"github.com/opdev7/LendTez/internal/contract"
	"github.com/opdev7/LendTez/internal/db"
	"github.com/opdev7/LendTez/internal/host"
	"github.com/opdev7/LendTez/internal/http/handlers"
	"github.com/opdev7/LendTez/internal/jobs"
	"github.com/opdev7/LendTez/internal/ledger"
	"github.com/opdev7/LendTez/internal/observability"
	postgresrepo "github.com/opdev7/LendTez/internal/repository/postgres"
	"github.com/opdev7/LendTez/internal/server"
	"github.com/opdev7/LendTez/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.NewPostgresPool(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect postgres", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	ldg, err := buildLedger(cfg)
	if err != nil {
		logger.Error("failed to build ledger", "err", err)
		os.Exit(1)
	}

	state := contract.NewState(cfg.CreatorAddress)
	state.MinDuration = cfg.DealMinDuration
	state.MaxDuration = cfg.DealMaxDuration

	opts := host.Options{}
	var journal *postgresrepo.TransitionRepository
	if pool != nil {
		stateRepo := postgresrepo.NewStateRepository(pool)
		snapshot, err := stateRepo.Load(ctx)
		if err != nil {
			logger.Error("failed to load state snapshot", "err", err)
			os.Exit(1)
		}
		if snapshot != nil {
			state, err = contract.RestoreState(snapshot)
			if err != nil {
				logger.Error("failed to restore state snapshot", "err", err)
				os.Exit(1)
			}
			logger.Info("contract state restored", "loans", len(state.Loans), "deals", len(state.Deals))
		}
		journal = postgresrepo.NewTransitionRepository(pool)
		opts.States = stateRepo
		opts.Transitions = journal
	}

	hub := ws.NewHub()
	opts.Events = hub

	c := contract.New(cfg.ContractAddress, state, ldg)
	h := host.New(c, ldg, logger, opts)

	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)

	var journalReader handlers.JournalReader
	if journal != nil {
		journalReader = journal
	}
	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:          pinger(pool),
		AdminHandler:    handlers.NewAdminHandler(h, journalReader),
		LoanHandler:     handlers.NewLoanHandler(h),
		DealHandler:     handlers.NewDealHandler(h),
		TransferHandler: handlers.NewTransferHandler(h),
		WSHandler:       ws.NewHandler(hub),
		JWTManager:      jwtManager,
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go jobs.NewExpiryWorker(h, hub).Run(workerCtx, cfg.ExpirySweepInterval)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr(), "ledger", cfg.LedgerMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}

func buildLedger(cfg config.Config) (contract.Ledger, error) {
	if cfg.LedgerMode == "rpc" {
		return ledger.NewRPC(cfg.LedgerRPCURL, cfg.ContractAddress)
	}
	return ledger.NewMemory(), nil
}

func pinger(pool *pgxpool.Pool) handlers.Pinger {
	if pool == nil {
		return nil
	}
	return pool
}
