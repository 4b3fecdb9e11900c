package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "seotooler/cmd/contact-service/docs"
	"seotooler/internal/config"
	"seotooler/internal/constants"
	"seotooler/internal/logger"
	"seotooler/pkg/logging"
)

var (
	configFile string
)

// @title           Seotooler Contact API
// @version         1.0
// @description     Contact form gateway: rate limited per client, relayed to the site owner's chat.

// @contact.name   Seotooler
// @contact.url    https://seotooler.com

// @host      localhost:8080
// @BasePath  /api

// @schemes   http https

func main() {
	rootCmd := &cobra.Command{
		Use:   "contact-service",
		Short: "Contact form gateway",
		Long:  "Contact Service accepts contact form submissions, rate limits them per client and relays them to a chat bot",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional, env vars override)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	return os.Getenv("CONFIG_FILE")
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the contact service",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := config.Load(resolveConfigFile())
			if err != nil {
				earlyLog.Error("Failed to load config: %v", err)
				return err
			}

			log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				earlyLog.Error("Failed to init logger: %v", err)
				return err
			}
			defer log.Sync()

			if sl, ok := log.(*logger.SugaredLogger); ok {
				sl.SetServiceName(constants.ServiceName)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting Contact Service")

			if !cfg.Relay.Configured() {
				log.WarnwCtx(ctx, "Relay credentials are not configured, every submission will fail with 500")
			}

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.Fatalf("Failed to initialize application: %v", err)
			}

			if err := app.Run(ctx); err != nil {
				log.ErrorwCtx(ctx, "Application error", "error", err)
				return err
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := config.Load(resolveConfigFile())
			if err != nil {
				earlyLog.Error("Invalid configuration: %v", err)
				return err
			}

			if !cfg.Relay.Configured() {
				earlyLog.Warn("relay.bot_token or relay.chat_id is empty, submissions will not be delivered")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: store=%s max_requests=%d window=%s path=%s\n",
				cfg.RateLimit.Store, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.Server.ContactPath)
			return nil
		},
	})

	return cmd
}
