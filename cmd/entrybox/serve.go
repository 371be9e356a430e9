package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/charlesng35/entrybox/internal/app"
	"github.com/charlesng35/entrybox/pkg/logger"
)

const rateStorePruneInterval = time.Minute

// serveOverrides holds command-line values that take precedence over the
// loaded configuration.
type serveOverrides struct {
	flags *pflag.FlagSet

	Port     int
	Mode     string
	LogLevel string
}

// newServeOverridesFromFlags adds flags pertaining to the serve command
func newServeOverridesFromFlags(flags *pflag.FlagSet) *serveOverrides {
	o := serveOverrides{flags: flags}

	flags.IntVarP(&o.Port, "port", "p", 0, "Override server.port")
	flags.StringVar(&o.Mode, "mode", "", "Override service.mode (entries, messages or all)")
	flags.StringVar(&o.LogLevel, "log-level", "", "Override server.log_level")

	return &o
}

// apply copies explicitly set flags onto cfg and re-validates it.
func (o *serveOverrides) apply(cfg *app.Config) error {
	changed := false
	if o.flags.Changed("port") {
		cfg.Server.Port = o.Port
		changed = true
	}
	if o.flags.Changed("mode") {
		cfg.Service.Mode = strings.ToLower(strings.TrimSpace(o.Mode))
		changed = true
	}
	if o.flags.Changed("log-level") {
		cfg.Server.LogLevel = o.LogLevel
	}
	if !changed {
		return nil
	}
	return cfg.Validate()
}

func newServeCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
	}
	overrides := newServeOverridesFromFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadApplicationConfig(*configPath)
		if err != nil {
			return err
		}
		if err := overrides.apply(cfg); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	}
	return cmd
}

func serve(ctx context.Context, cfg *app.Config) error {
	if err := app.ConfigureLogging(cfg.Server); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	stack, err := bootstrapRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer stack.Shutdown(log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           stack.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("mode", cfg.Service.Mode),
			zap.String("auth", cfg.Auth.Mode),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		stack.RateStore.Run(gctx, rateStorePruneInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}
