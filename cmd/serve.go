package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/preview"
)

var (
	serveData dataFlags
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a preview server for the rendered map and hover overlays",
	Long:  "Serves the rendered map, region draw instructions, and hover overlays over HTTP. Send SIGHUP to reload the datasets; cached documents of the old datasets are dropped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		paths := serveData.resolve(cfg)
		in, err := loadInputs(ctx, cfg, paths)
		if err != nil {
			return err
		}

		metrics, err := preview.NewMetrics(prometheus.NewRegistry())
		if err != nil {
			return err
		}

		var cache *preview.RenderCache
		if cfg.Server.CacheEntries > 0 {
			cache = preview.NewRenderCache(cfg.Server.CacheEntries, cfg.Server.CacheTTL())
		}

		server := preview.NewServer(newRenderer(cfg), in.boundaries, in.attributes, preview.Options{
			MountID:     cfg.Canvas.MountID,
			Cache:       cache,
			Metrics:     metrics,
			RateLimit:   cfg.Server.RateLimit,
			CORSOrigins: cfg.Server.CORSOrigins,
		})

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go watchReload(ctx, hup, server, func(ctx context.Context) (*inputs, error) {
			return loadInputs(ctx, cfg, paths)
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("regions", len(in.boundaries)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// watchReload reloads the datasets into server each time sig fires, until ctx
// is done. A failed reload keeps the previous datasets.
func watchReload(ctx context.Context, sig <-chan os.Signal, server *preview.Server, load func(context.Context) (*inputs, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			in, err := load(ctx)
			if err != nil {
				zap.L().Error("reload failed, keeping previous datasets", zap.Error(err))
				continue
			}
			server.Reload(in.boundaries, in.attributes)
		}
	}
}

func init() {
	serveData.register(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
