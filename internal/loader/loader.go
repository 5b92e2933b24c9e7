package loader

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/model"
	"regimeforge-go/internal/monitor"
	"regimeforge-go/internal/service"
	"regimeforge-go/internal/worker"
)

// Signals at or above this confidence get pushed to Telegram
const notifyConfidence = 0.75

// Loader owns the schedules: the multi-coin market scan, the automation tick
// and the position monitor. Each schedule carries its own in-flight guard so
// a slow cycle is skipped, never stacked.
type Loader struct {
	engines    map[string]*service.Engine
	automation *service.AutomationService
	journal    *service.JournalService
	telegram   *service.TelegramService
	monitor    *monitor.PositionMonitor

	isScanning atomic.Bool
	isTicking  atomic.Bool
}

// NewLoader creates a loader. Per-coin engines are built upfront so signal
// smoothing never bleeds across instruments.
func NewLoader(
	client service.MarketAPI,
	contextProvider service.ContextProvider,
	automation *service.AutomationService,
	journal *service.JournalService,
	telegram *service.TelegramService,
	positionMonitor *monitor.PositionMonitor,
) *Loader {
	engines := make(map[string]*service.Engine, len(config.CoinOrder))
	for _, coin := range config.CoinOrder {
		engines[coin] = service.NewEngine(client, contextProvider)
	}

	return &Loader{
		engines:    engines,
		automation: automation,
		journal:    journal,
		telegram:   telegram,
		monitor:    positionMonitor,
	}
}

// Scan analyzes one coin with its dedicated engine
func (l *Loader) Scan(ctx context.Context, coin string) *model.Signal {
	engine, ok := l.engines[coin]
	if !ok {
		return nil
	}
	return engine.Analyze(ctx, coin, "")
}

// Start registers the schedules and blocks forever
func (l *Loader) Start() {
	log.Println("🚀 Starting RegimeForge scheduler...")

	c := cron.New()

	c.AddFunc(config.AppConfig.ScanSchedule, func() { l.scan() })
	c.AddFunc(config.AppConfig.AutomationSchedule, func() { l.tick() })

	c.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		l.monitor.LogOpenPositions(ctx)
	})

	c.Start()
	log.Printf("⏰ Scheduler started - scan %s, automation %s",
		config.AppConfig.ScanSchedule, config.AppConfig.AutomationSchedule)

	select {}
}

// scan runs one full multi-coin analysis cycle through the worker pool.
// Returns false when a previous cycle is still in flight.
func (l *Loader) scan() bool {
	if !l.isScanning.CompareAndSwap(false, true) {
		log.Println("⏭️  Skipping scan - previous cycle still running")
		return false
	}
	defer l.isScanning.Store(false)
	defer service.RecoverAndLog("scan cycle")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	log.Println("===========================================")
	log.Printf("🔄 Scan started at %s", time.Now().Format("15:04:05"))

	pool := worker.NewPool(4, l)
	pool.Start(ctx)

	for _, coin := range config.CoinOrder {
		pool.AddJob(coin)
	}

	results := pool.Wait()

	notified := 0
	for _, r := range results {
		l.journal.RecordSignal(ctx, r.Coin, r.Signal)

		if r.Signal.Signal != model.VerdictNeutral && r.Signal.Confidence >= notifyConfidence {
			l.telegram.SendSignal(r.Coin, r.Signal)
			notified++
		}
	}

	log.Printf("✨ Scan complete - %d coins analyzed, %d strong signals sent", len(results), notified)
	log.Println("===========================================")
	return true
}

// tick runs one automation cycle for the active coin. Returns false when a
// previous tick is still in flight.
func (l *Loader) tick() bool {
	if !l.isTicking.CompareAndSwap(false, true) {
		log.Println("⏭️  Skipping automation tick - previous tick still running")
		return false
	}
	defer l.isTicking.Store(false)
	defer service.RecoverAndLog("automation tick")

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	result := l.automation.Run(ctx, config.AppConfig.DefaultCoin)
	if result.Action != "none" {
		log.Printf("🤖 [Automation] %s: %s - %s", result.Coin, result.Action, result.Reason)
		l.notifyActivity(ctx, result.Coin)
	}
	return true
}

// notifyActivity pushes the current position summary plus the latest journal
// actions after an executed automation action
func (l *Loader) notifyActivity(ctx context.Context, coin string) {
	if l.telegram == nil || l.monitor == nil {
		return
	}

	actions, err := l.journal.RecentActions(ctx, coin, 5)
	if err != nil {
		log.Printf("⚠️  [Loader] Recent actions unavailable: %v", err)
		actions = nil
	}

	l.telegram.Send(formatActivity(l.monitor.Summary(ctx), actions))
}

// formatActivity renders the notification body for an automation action
func formatActivity(summary string, actions []service.ActionRecord) string {
	var sb strings.Builder
	sb.WriteString(summary)

	if len(actions) > 0 {
		sb.WriteString("\n\nRecent actions:\n")
		for _, a := range actions {
			sb.WriteString(fmt.Sprintf("• %s %s: %s\n", a.Coin, a.Action, a.Reason))
		}
	}
	return sb.String()
}
