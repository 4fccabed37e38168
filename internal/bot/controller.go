// Package bot hosts the trading controller: run/stop state, periodic analysis
// cycles and the decision to place simulated orders.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"CryptoPilot/internal/collector"
	"CryptoPilot/internal/fund"
	"CryptoPilot/internal/model"
	"CryptoPilot/internal/notifier"
	"CryptoPilot/internal/recorder"
	"CryptoPilot/internal/scheduler"
	"CryptoPilot/internal/strategy"
)

// Notifier delivers trade notifications. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	Enabled() bool
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Config tunes the controller.
type Config struct {
	Interval    time.Duration // between analysis cycles
	CallTimeout time.Duration // bound on each external call
	Window      int           // prices handed to the oracle
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.Window <= 0 {
		c.Window = collector.WindowSize
	}
}

// Deps are the controller's collaborators. Recorder and Notifier may be nil.
type Deps struct {
	Collector *collector.Collector
	Oracle    strategy.Oracle
	Fund      *fund.Manager
	Scheduler scheduler.Scheduler
	Recorder  recorder.Recorder
	Notifier  Notifier
}

// Controller owns the bot's run state and drives analysis cycles.
type Controller struct {
	collector *collector.Collector
	oracle    strategy.Oracle
	fund      *fund.Manager
	sched     scheduler.Scheduler
	recorder  recorder.Recorder
	notifier  Notifier
	cfg       Config

	// dispatch runs background work: the immediate cycle on Start and
	// trade notifications.
	dispatch func(func())

	mu            sync.RWMutex
	running       bool
	statusMessage string
	epoch         uint64 // bumped on every Start and Stop
	lastInsight   *model.Insight

	// busy is the single-flight guard for RunCycle. It stays set until an
	// in-flight cycle returns, even across Stop.
	busy atomic.Bool
}

// New creates a stopped Controller.
func New(deps Deps, cfg Config) *Controller {
	cfg.applyDefaults()
	rec := deps.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Controller{
		collector:     deps.Collector,
		oracle:        deps.Oracle,
		fund:          deps.Fund,
		sched:         deps.Scheduler,
		recorder:      rec,
		notifier:      deps.Notifier,
		cfg:           cfg,
		dispatch:      func(f func()) { go f() },
		statusMessage: model.StatusOffline,
	}
}

// Mode returns the trading mode of the managed portfolio.
func (c *Controller) Mode() model.Mode { return c.fund.Mode() }

// Start loads the portfolio, schedules recurring cycles and fires one
// immediately. It is a no-op when already running. A portfolio load failure
// leaves the bot offline and is returned.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.epoch++
	epoch := c.epoch
	c.statusMessage = model.StatusStarting
	c.mu.Unlock()

	log.Printf("[INFO] starting bot in %s mode", c.fund.Mode())

	loadCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	err := c.fund.Load(loadCtx)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch {
		// stopped while loading
		c.mu.Unlock()
		return err
	}
	if err != nil {
		c.running = false
		c.statusMessage = model.StatusStartErr
		c.mu.Unlock()
		log.Printf("[ERROR] start failed: %v", err)
		return fmt.Errorf("start bot: %w", err)
	}
	if err := c.sched.Start(c.cfg.Interval, c.RunCycle); err != nil {
		c.running = false
		c.statusMessage = model.StatusStartErr
		c.mu.Unlock()
		log.Printf("[ERROR] start failed: %v", err)
		return fmt.Errorf("start bot: %w", err)
	}
	c.statusMessage = model.StatusEnabled
	c.mu.Unlock()

	log.Printf("[INFO] bot enabled, analyzing every %s", c.cfg.Interval)
	c.dispatch(c.RunCycle)
	return nil
}

// Stop cancels future cycles. It is a no-op when already stopped. A cycle
// already in flight runs to completion but will not trade.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.epoch++
	c.statusMessage = model.StatusOffline
	c.sched.Stop()
	log.Println("[INFO] bot stopped")
}

// RunCycle performs one analysis cycle: fetch price, ask the oracle, maybe
// trade. Ticks that arrive while a cycle is in flight, or while the bot is
// stopped, are no-ops.
func (c *Controller) RunCycle() {
	c.mu.RLock()
	running, epoch := c.running, c.epoch
	c.mu.RUnlock()
	if !running {
		return
	}
	if !c.busy.CompareAndSwap(false, true) {
		log.Println("[INFO] analysis already in progress, skipping tick")
		return
	}
	defer c.busy.Store(false)

	c.setStatus(epoch, model.StatusAnalyzing)

	evt := &recorder.CycleEvent{
		At:     time.Now(),
		Mode:   c.fund.Mode(),
		Oracle: c.oracle.Name(),
	}
	trade, err := c.analyze(epoch, evt)
	if err != nil {
		log.Printf("[ERROR] analysis cycle failed: %v", err)
		ins := model.FailureInsight()
		c.setInsight(ins)
		evt.Insight = ins
		evt.Outcome = recorder.OutcomeFailed
		evt.Error = err.Error()
	}

	if err := c.recorder.RecordCycle(evt); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	if trade != nil {
		c.notifyTrade(trade)
	}

	c.setStatus(epoch, model.StatusEnabled)
}

func (c *Controller) analyze(epoch uint64, evt *recorder.CycleEvent) (*model.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.CallTimeout)
	price, err := c.collector.Latest(ctx)
	cancel()
	if err != nil {
		return nil, err
	}
	evt.Price = price.Float()

	ctx, cancel = context.WithTimeout(context.Background(), c.cfg.CallTimeout)
	ins, err := c.oracle.Insight(ctx, c.collector.Recent(c.cfg.Window))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("oracle %s: %w", c.oracle.Name(), err)
	}
	c.setInsight(ins)
	evt.Insight = ins
	log.Printf("[INFO] insight: %s (%.0f%%) @ %s", ins.Signal, ins.Confidence, price.Price)

	if !ins.Actionable() {
		evt.Outcome = recorder.OutcomeNoAction
		return nil, nil
	}
	if !c.sameRun(epoch) {
		log.Printf("[INFO] bot stopped during analysis, not executing %s", ins.Signal)
		evt.Outcome = recorder.OutcomeSkipped
		return nil, nil
	}

	side, _ := model.SideFor(ins.Signal)
	ctx, cancel = context.WithTimeout(context.Background(), c.cfg.CallTimeout)
	trade, err := c.fund.Execute(ctx, side, price.Price)
	cancel()
	if errors.Is(err, fund.ErrRejected) {
		log.Printf("[INFO] %v", err)
		evt.Outcome = recorder.OutcomeRejected
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", side, err)
	}

	log.Printf("[INFO] executed %s %s @ %s", trade.Side, trade.AssetAmount, trade.Price)
	evt.Outcome = recorder.OutcomeTraded
	evt.TradeID = trade.ID
	return trade, nil
}

func (c *Controller) notifyTrade(t *model.Trade) {
	if c.notifier == nil || !c.notifier.Enabled() {
		return
	}
	text := notifier.FormatTrade(c.fund.Mode(), t)
	c.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := c.notifier.SendWithRetry(ctx, text, 3); err != nil {
			log.Printf("[ERROR] send trade notification: %v", err)
		}
	})
}

func (c *Controller) sameRun(epoch uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running && c.epoch == epoch
}

// setStatus updates the status message unless the run it belongs to has ended.
func (c *Controller) setStatus(epoch uint64, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running && c.epoch == epoch {
		c.statusMessage = msg
	}
}

func (c *Controller) setInsight(ins model.Insight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastInsight = &ins
}

// Status reports run state. IsAnalyzing is only reported while running.
func (c *Controller) Status() model.BotStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.BotStatus{
		IsRunning:     c.running,
		IsAnalyzing:   c.running && c.busy.Load(),
		StatusMessage: c.statusMessage,
	}
}

func (c *Controller) Portfolio() model.Portfolio { return c.fund.Portfolio() }

func (c *Controller) TradeHistory() []model.Trade { return c.fund.History() }

// LatestInsight returns the last recorded insight, or nil before the first cycle.
func (c *Controller) LatestInsight() *model.Insight {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastInsight == nil {
		return nil
	}
	ins := *c.lastInsight
	return &ins
}

// LatestPrice returns the most recent price point, or nil when none was fetched.
func (c *Controller) LatestPrice() *model.PricePoint {
	p, ok := c.collector.Last()
	if !ok {
		return nil
	}
	return &p
}

// PriceWindow returns the rolling chart window, oldest first.
func (c *Controller) PriceWindow() []model.PricePoint { return c.collector.Points() }

// Cycles returns up to limit journaled cycles, newest first.
func (c *Controller) Cycles(limit int) ([]recorder.CycleEvent, error) {
	return c.recorder.RecentCycles(limit)
}

// Dashboard bundles status, portfolio, insight, price and history.
func (c *Controller) Dashboard() model.Dashboard {
	trades := c.TradeHistory()
	if trades == nil {
		trades = []model.Trade{}
	}
	return model.Dashboard{
		Mode:      c.fund.Mode(),
		Status:    c.Status(),
		Portfolio: c.Portfolio(),
		Insight:   c.LatestInsight(),
		Price:     c.LatestPrice(),
		Trades:    trades,
	}
}
