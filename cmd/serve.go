package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jewelrydam/catalog"
	"jewelrydam/db"
	"jewelrydam/handlers"
	"jewelrydam/processing"
	"jewelrydam/routes"

	"github.com/gin-gonic/autotls"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	conn, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close(conn)
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	if err = os.MkdirAll(cfg.TmpDir, 0700); err != nil {
		return err
	}

	svc := catalog.New(conn, store, catalog.Options{
		ContinueOnFailure: cfg.IngestContinueOnError,
		StoreTimeout:      cfg.ObjectStoreTimeout,
	})
	reconciler := processing.NewReconciler(conn, store, processing.Options{
		Interval:           cfg.ReconcileInterval,
		GracePeriod:        cfg.ReconcileGracePeriod,
		DeleteUnreferenced: cfg.ReconcileDeleteUnreferenced,
		StoreTimeout:       cfg.ObjectStoreTimeout,
	})
	reconciler.Start()
	defer reconciler.Stop()

	router := routes.New(cfg, handlers.New(cfg, conn, store, svc, reconciler))
	if cfg.TLSDomains != "" {
		err = autotls.Run(router, strings.Split(cfg.TLSDomains, ",")...)
		log.Printf("Server stopped: %v", err)
		return err
	}

	server := &http.Server{Addr: cfg.BindAddress, Handler: router}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.Printf("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()
	log.Printf("Listening on %s (storage: %s, database: %s)", cfg.BindAddress, store.GetBucket().StorageType, cfg.DBDriver)
	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Server stopped: %v", err)
		return err
	}
	// ListenAndServe returns as soon as Shutdown starts, in-flight requests are still draining
	<-drained
	return nil
}
