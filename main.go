package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"walletgw/config"
	"walletgw/controllers/callback/slots/gslot"
	"walletgw/controllers/callback/sportsbook/sbo"
	"walletgw/controllers/user"
	"walletgw/credentials"
	"walletgw/database"
	"walletgw/guard"
	"walletgw/jobs"
	"walletgw/repository"
	"walletgw/routes"
	"walletgw/wallet"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment as-is")
	}

	cfg, v, err := config.Load(os.Getenv("WGW_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	resolver, err := credentials.NewResolver(v)
	if err != nil {
		log.Fatalf("Failed to load provider credentials: %v", err)
	}

	repo := repository.New(db)
	g := guard.New(repo)
	ledger := wallet.NewClient(cfg.Ledger.Timeout, cfg.Ledger.MaxAttempts, cfg.Ledger.Backoff)
	gw := wallet.NewLoggingWallet(ledger, logger)

	// Provider-side auth secrets come from the same credential table.
	sboCreds, err := resolver.Resolve(sbo.Provider, cfg.Environment, "")
	if err != nil {
		log.Fatalf("SBO credentials missing: %v", err)
	}
	gslotCreds, err := resolver.Resolve(gslot.Provider, cfg.Environment, "")
	if err != nil {
		log.Fatalf("Gslot credentials missing: %v", err)
	}

	app := fiber.New()
	routes.Setup(app, routes.Deps{
		APIKey:           cfg.APIKey,
		SboCompanyKey:    sboCreds.APIKey,
		GslotAgentCode:   gslotCreds.AuthToken,
		GslotAgentSecret: gslotCreds.APIKey,
		User:             user.NewHandler(cfg.Environment, resolver, repo, g, gw),
		Sbo:              sbo.NewHandler(cfg.Environment, resolver, repo, g, gw),
		Gslot:            gslot.NewHandler(cfg.Environment, resolver, repo, g, gw),
	})

	ctx, stop := context.WithCancel(context.Background())
	if cfg.Scheduler.Enabled {
		scheduler := &jobs.Scheduler{
			Env:       cfg.Environment,
			Providers: []string{sbo.Provider},
			Interval:  cfg.Scheduler.Interval,
			Creds:     resolver,
			Repo:      repo,
			Guard:     g,
			Wallet:    gw,
			Log:       logger,
		}
		scheduler.Start(ctx)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	log.Println("Server running at", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panicf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Gracefully shutting down...")
	stop()
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited cleanly")
}
