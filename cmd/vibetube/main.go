package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vibetube/vibetube/internal/backend"
	"github.com/vibetube/vibetube/internal/config"
	"github.com/vibetube/vibetube/internal/geoip"
	"github.com/vibetube/vibetube/internal/server"
	"github.com/vibetube/vibetube/internal/storage"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	backendURL string
	envFile    string
}

// settings loads the environment and applies command line overrides.
func (g *globalFlags) settings() (config.Config, error) {
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return config.Config{}, err
	}
	cfg := config.Load()
	if g.backendURL != "" {
		cfg.BackendURL = g.backendURL
	}
	return cfg, nil
}

func newClient(cfg config.Config) *backend.Client {
	return backend.NewClient(cfg.BackendURL,
		backend.WithRequestTimeout(cfg.RequestTimeout),
		backend.WithUploadTimeout(cfg.UploadTimeout),
	)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "vibetube",
		Short:        "Browse, watch and upload videos",
		Long:         "VibeTube is a web front end for a video backend: a searchable feed, a watch page and an upload form.",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("vibetube version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flags.backendURL, "backend", "", "Backend base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Environment file to load if present")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newWatchCmd(flags))
	rootCmd.AddCommand(newUploadCmd(flags))

	return rootCmd
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.settings()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}

func serve(cfg config.Config) error {
	client := newClient(cfg)

	srvCfg := server.Config{
		Backend:        client,
		BaseURL:        cfg.BaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		UploadRate:     cfg.UploadRate,
		UploadBurst:    cfg.UploadBurst,
		TrustProxy:     cfg.TrustProxy,
	}

	if cfg.StorageEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("storage initialization failed: %w", err)
		}
		srvCfg.Streams = store
		srvCfg.Objects = store
		srvCfg.StorageEndpoint = cfg.PublicStorageEndpoint()
		log.Printf("streaming from bucket %s", cfg.Storage.Bucket)
	}

	geo := geoip.Open(cfg.GeoIPDB)
	defer geo.Close()
	srvCfg.Geo = geo

	srv := server.New(srvCfg)

	// Uploads are proxied inside the request, so the read and write
	// deadlines follow the upload timeout. Zero leaves them unbounded.
	var writeTimeout time.Duration
	if cfg.UploadTimeout > 0 {
		writeTimeout = cfg.UploadTimeout + 30*time.Second
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.UploadTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("vibetube listening on :%s (backend %s)", cfg.Port, client.BaseURL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Println("shutdown complete")
	return nil
}
