package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tidytab/adapters/convert"
	"tidytab/adapters/excel"
	"tidytab/adapters/pdf"
	"tidytab/adapters/render"
	"tidytab/app"
	"tidytab/internal/config"
	"tidytab/ui"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var port string
	var pruneEvery time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context(), cfg, pruneEvery)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().DurationVar(&pruneEvery, "prune-every", time.Hour, "How often expired sessions are removed (0 disables)")

	return cmd
}

func runServe(parent context.Context, cfg *config.Config, pruneEvery time.Duration) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	parser := excel.NewDataReader()
	services := ui.Services{
		Cleaning: app.NewCleaningService(parser, store, excel.Encoders(), app.CleaningOptions{
			MaxUploadBytes: cfg.Limits.MaxUploadBytes,
			PreviewRows:    cfg.Limits.PreviewRows,
			PreviewColumns: cfg.Limits.PreviewColumns,
		}),
		Charts: app.NewChartService(
			excel.NewDataReaderWithConfig(excel.ExportedTableConfig()),
			render.NewPlotRenderer(),
			excel.NewChartWorkbookExporter(),
			pdf.NewChartDocumentExporter(),
			store,
			cfg.Limits.MaxUploadBytes,
		),
		Convert: app.NewConvertService(convert.NewDocumentConverter(), cfg.Convert.MaxConcurrent, cfg.Limits.MaxUploadBytes),
	}

	server, err := ui.NewServer(cfg, services)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[Server] Listening on http://localhost:%s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Printf("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if pruneEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(pruneEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					removed, err := store.Prune(gctx, cfg.Session.MaxAge)
					if err != nil {
						log.Printf("[Server] Session prune failed: %v", err)
						continue
					}
					if removed > 0 {
						log.Printf("[Server] Pruned %d expired session records", removed)
					}
				}
			}
		})
	}

	return g.Wait()
}
