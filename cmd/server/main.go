package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/exchange"
	"regimeforge-go/internal/loader"
	"regimeforge-go/internal/monitor"
	"regimeforge-go/internal/service"
)

func main() {
	// Global panic recovery
	defer service.RecoverAndLog("main")

	// Load configuration
	config.Load()

	log.Println("🔧 Initializing services...")

	// Exchange and market context clients
	weexClient := exchange.NewClient()
	coinGecko := service.NewCoinGeckoService()

	// Journal is best effort: a down database disables persistence but
	// never blocks trading
	journalService, err := service.NewJournalService()
	if err != nil {
		log.Printf("⚠️  Journal disabled: %v", err)
		journalService = nil
	}

	telegramService := service.NewTelegramService()

	tradingService := service.NewTradingService(weexClient)
	takeProfitService := service.NewTakeProfitService()
	signalEngine := service.NewEngine(weexClient, coinGecko)

	automationService := service.NewAutomationService(
		tradingService,
		signalEngine,
		takeProfitService,
		journalService,
		telegramService,
	)

	positionMonitor := monitor.NewPositionMonitor(tradingService)

	log.Println("✅ All services initialized successfully")

	loaderService := loader.NewLoader(
		weexClient,
		coinGecko,
		automationService,
		journalService,
		telegramService,
		positionMonitor,
	)

	// Handle graceful shutdown
	service.SafeGo("shutdown handler", func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Received shutdown signal...")

		shutdownTimer := time.NewTimer(30 * time.Second)
		go func() {
			<-shutdownTimer.C
			log.Println("⚠️  Shutdown timeout - forcing exit")
			os.Exit(1)
		}()

		journalService.Close(context.Background())
		shutdownTimer.Stop()
		os.Exit(0)
	})

	log.Printf("🚀 RegimeForge is now running (active coin: %s)", config.AppConfig.DefaultCoin)
	loaderService.Start()
}
