package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is the pause between two full passes.
const DefaultPollInterval = 60 * time.Second

// PassRunner runs one full batch pass.
type PassRunner interface {
	RunPass(ctx context.Context) (PassStats, error)
}

// Poller repeats batch passes, pausing a full interval after each one.
// Passes never overlap.
type Poller struct {
	runner       PassRunner
	pollInterval time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

func NewPoller(runner PassRunner, pollInterval time.Duration, logger *zap.Logger) *Poller {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Poller{
		runner:       runner,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start runs the poller in the background until Stop is called or ctx ends.
func (p *Poller) Start(ctx context.Context) error {
	stop, err := p.begin()
	if err != nil {
		return err
	}

	go p.loop(ctx, stop)
	return nil
}

// Run blocks until Stop is called or ctx ends. It returns ctx.Err() on
// cancellation and nil after Stop.
func (p *Poller) Run(ctx context.Context) error {
	stop, err := p.begin()
	if err != nil {
		return err
	}

	return p.loop(ctx, stop)
}

// Stop stops the poller
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.logger.Info("Poller stopping")
	close(p.stopChan)
	p.running = false
}

func (p *Poller) begin() (chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil, errors.New("poller is already running")
	}

	p.running = true
	p.stopChan = make(chan struct{})
	p.logger.Info("Poller starting", zap.Duration("poll_interval", p.pollInterval))
	return p.stopChan, nil
}

func (p *Poller) finish(stop chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopChan == stop {
		p.running = false
	}
}

// loop is the main polling loop
func (p *Poller) loop(ctx context.Context, stop chan struct{}) error {
	defer p.finish(stop)

	// Process immediately on start
	p.runPass(ctx)

	// The pause is measured from the end of each pass.
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopped due to context cancellation")
			return ctx.Err()
		case <-stop:
			p.logger.Info("Poller stopped")
			return nil
		case <-timer.C:
			p.runPass(ctx)
			timer.Reset(p.pollInterval)
		}
	}
}

func (p *Poller) runPass(ctx context.Context) {
	if _, err := p.runner.RunPass(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("Failed to run batch pass", zap.Error(err))
	}
}
