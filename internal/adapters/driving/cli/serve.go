package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stridecal/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/stridecal/internal/adapters/driven/strava"
	"github.com/custodia-labs/stridecal/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/stridecal/internal/core/services"
	"github.com/custodia-labs/stridecal/internal/logger"

	googleadapter "github.com/custodia-labs/stridecal/internal/adapters/driven/google"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook receiver and account API",
	Long: `Starts the HTTP server that receives Strava webhook notifications
and serves the account endpoints used by the web frontend.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, else :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	stravaID := configStore.GetString("strava.client_id")
	stravaSecret := configStore.GetString("strava.client_secret")
	if stravaID == "" || stravaSecret == "" {
		return errors.New("strava.client_id and strava.client_secret must be configured")
	}

	googleID := configStore.GetString("google.client_id")
	googleSecret := configStore.GetString("google.client_secret")
	if googleID == "" || googleSecret == "" {
		return errors.New("google.client_id and google.client_secret must be configured")
	}

	addr := serveAddr
	if addr == "" {
		addr = configStore.GetString("server.address")
	}
	if addr == "" {
		addr = ":8080"
	}

	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	users := store.UserStore()
	stravaClient := strava.NewClient(stravaID, stravaSecret)
	googleProvider := googleadapter.NewProvider(googleID, googleSecret)

	creds := services.NewCredentialCoordinator(users, stravaClient, googleProvider)
	syncService := services.NewSyncService(users, stravaClient, googleProvider, creds)
	accountService := services.NewAccountService(users, stravaClient, googleProvider)

	server := httpapi.NewServer(httpapi.Config{
		Address:            addr,
		WebhookVerifyToken: configStore.GetString("server.webhook_verify_token"),
		AllowedOrigin:      configStore.GetString("server.allowed_origin"),
	}, syncService, accountService)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stridecal %s listening on %s (db %s)", version, addr, store.Path())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownCh:
		logger.Info("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
