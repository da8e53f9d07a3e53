package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/jobtrack/internal/config"
	"github.com/jonathan/jobtrack/internal/logging"
	"github.com/jonathan/jobtrack/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort     int
	serveLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes the applications table, the entry form, login and the dashboard as JSON endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}

	flags := config.Config{Port: servePort, LogLevel: serveLogLevel}
	cfg := flags.MergeWithDefaults(*loaded)
	cfg.Seed = loaded.Seed

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	st, err := loadStore(&cfg)
	if err != nil {
		return err
	}
	logger.WithField("records", st.Len()).Info("store ready")

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		PageSize:    cfg.PageSize,
		Locale:      cfg.LanguageTag(),
		SubmitDelay: cfg.SubmitDelay.Std(),
		LoginDelay:  cfg.LoginDelay.Std(),
		Store:       st,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
