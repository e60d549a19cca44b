package live

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/ebb/internal/engine"
	"github.com/roach88/ebb/internal/harness"
)

// MaxRate is the highest step rate a Host accepts, in steps per second.
const MaxRate = 1000

// Host steps a scenario in real time.
// Host is not safe for concurrent use; Run owns it until it returns.
type Host struct {
	path    string
	rate    int
	sink    Sink
	logger  *slog.Logger
	resets  <-chan struct{}
	reloads <-chan string
	runner  *harness.Runner

	// previous is the runner replaced by the last reload. It is restored if
	// the reloaded scenario fails its first step.
	previous *harness.Runner
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithRate sets the number of steps per second. Default: engine.BaseRate.
func WithRate(hz int) HostOption {
	return func(h *Host) {
		h.rate = hz
	}
}

// WithHostLogger sets the host's logger. It is also passed to every engine
// the host creates.
func WithHostLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithResets sets the channel of reset requests.
func WithResets(ch <-chan struct{}) HostOption {
	return func(h *Host) {
		h.resets = ch
	}
}

// WithReloads sets the channel of changed scenario paths.
func WithReloads(ch <-chan string) HostOption {
	return func(h *Host) {
		h.reloads = ch
	}
}

// NewHost loads the scenario at path and prepares a fresh engine for it.
func NewHost(path string, sink Sink, opts ...HostOption) (*Host, error) {
	h := &Host{
		path:   path,
		rate:   engine.BaseRate,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rate <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %d", h.rate)
	}
	if h.rate > MaxRate {
		return nil, fmt.Errorf("rate must be at most %d, got %d", MaxRate, h.rate)
	}

	runner, err := h.load()
	if err != nil {
		return nil, err
	}
	h.runner = runner
	return h, nil
}

// Scenario returns the scenario currently being stepped.
func (h *Host) Scenario() *harness.Scenario {
	return h.runner.Scenario()
}

// Tick returns the current engine tick.
func (h *Host) Tick() int64 {
	return h.runner.Engine().Tick()
}

// Run steps the scenario once per period until ctx is done.
// The scenario's tick count does not bound a live run.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(h.rate))
	defer ticker.Stop()

	h.logger.Info("host started", "scenario", h.Scenario().Name, "rate", h.rate)
	pendingReset := false
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("host stopped", "tick", h.Tick())
			return ctx.Err()
		case _, ok := <-h.resets:
			if !ok {
				h.resets = nil
				continue
			}
			pendingReset = true
		case path, ok := <-h.reloads:
			if !ok {
				h.reloads = nil
				continue
			}
			h.logger.Debug("scenario changed", "path", path)
			h.Reload()
			pendingReset = false
		case <-ticker.C:
			if err := h.Step(pendingReset); err != nil {
				return err
			}
			pendingReset = false
		}
	}
}

// Step advances the engine once and sends the sample to the sink.
// A scenario that fails on its first step after a reload counts as a failed
// reload: the previous runner is restored and the error goes to the sink.
func (h *Host) Step(reset bool) error {
	sample, err := h.runner.Step(reset)
	if err != nil {
		err = fmt.Errorf("scenario %q: %w", h.Scenario().Name, err)
		if h.previous == nil {
			return err
		}
		h.runner, h.previous = h.previous, nil
		h.reportReloadFailure(err)
		return nil
	}
	h.previous = nil
	if reset {
		h.logger.Debug("transitions reset", "tick", sample.Tick)
	}

	msg, err := encodeSample(h.Scenario().Name, sample)
	if err != nil {
		return fmt.Errorf("encode tick %d: %w", sample.Tick, err)
	}
	h.sink.Broadcast(msg)
	return nil
}

// Reload re-reads the scenario file and restarts it on a fresh engine.
// If the file no longer loads, the current scenario keeps running and the
// error is reported to the sink.
func (h *Host) Reload() {
	runner, err := h.load()
	if err != nil {
		h.reportReloadFailure(err)
		return
	}

	if h.previous == nil {
		h.previous = h.runner
	}
	h.runner = runner
	h.logger.Info("scenario reloaded", "scenario", runner.Scenario().Name)
	if msg, err := encodeReload(runner.Scenario().Name); err == nil {
		h.sink.Broadcast(msg)
	}
}

func (h *Host) reportReloadFailure(err error) {
	h.logger.Warn("reload failed", "path", h.path, "error", err)
	if msg, encErr := encodeError(err.Error()); encErr == nil {
		h.sink.Broadcast(msg)
	}
}

func (h *Host) load() (*harness.Runner, error) {
	scenario, err := harness.LoadScenario(h.path)
	if err != nil {
		return nil, err
	}
	return harness.NewRunner(scenario, engine.WithLogger(h.logger))
}
