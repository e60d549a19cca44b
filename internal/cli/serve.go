package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ebb/internal/engine"
	"github.com/roach88/ebb/internal/harness"
	"github.com/roach88/ebb/internal/live"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr  string
	Rate  int
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <scenario>",
		Short: "Step a scenario in real time and stream samples over a websocket",
		Long: `Step a scenario in real time and stream every sample to websocket clients.

The engine advances once per tick at the base rate (60 Hz unless --rate is
given). Clients connect to /ws and receive one JSON message per tick; sending
{"type":"reset"} re-anchors every transition probe on the next tick.
GET /scenario returns the scenario as JSON.

With --watch the scenario file is reloaded whenever it changes on disk.

Examples:
  ebb serve ./scenarios/orbit.yaml
  ebb serve ./scenarios/wave_shot.cue --addr :9000 --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8060", "listen address")
	cmd.Flags().IntVar(&opts.Rate, "rate", engine.BaseRate, fmt.Sprintf("steps per second (1-%d)", live.MaxRate))
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "reload the scenario when the file changes")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	if opts.Rate <= 0 || opts.Rate > live.MaxRate {
		msg := fmt.Sprintf("--rate must be between 1 and %d, got %d", live.MaxRate, opts.Rate)
		_ = formatter.Error(ErrCodeInvalidOption, msg, nil)
		return NewExitError(ExitCommandError, "invalid --rate")
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	hub := live.NewHub(live.WithHubLogger(logger))
	hostOpts := []live.HostOption{
		live.WithRate(opts.Rate),
		live.WithHostLogger(logger),
		live.WithResets(hub.Resets()),
	}

	if opts.Watch {
		watcher, err := live.NewWatcher(path)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to watch scenario", err)
		}
		defer watcher.Close()
		go func() {
			for err := range watcher.Errors {
				logger.Warn("watch error", "error", err)
			}
		}()
		hostOpts = append(hostOpts, live.WithReloads(watcher.Events))
	}

	host, err := live.NewHost(path, hub, hostOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/scenario", scenarioHandler(path))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	go hub.Run(ctx)

	serveErr := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	logger.Info("serving", "scenario", host.Scenario().Name, "addr", ln.Addr().String(), "rate", opts.Rate)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on ws://%s/ws\n", host.Scenario().Name, ln.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	hostErr := host.Run(ctx)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}

	select {
	case err := <-serveErr:
		return WrapExitError(ExitFailure, "server error", err)
	default:
	}
	if hostErr != nil && !errors.Is(hostErr, context.Canceled) && !errors.Is(hostErr, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "host error", hostErr)
	}

	logger.Info("stopped gracefully")
	return nil
}

// scenarioHandler serves the scenario file as JSON. The file is re-read on
// every request so the response follows reloads.
func scenarioHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scenario)
	}
}
