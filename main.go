package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jmichaud/grocerytracker/config"
	"jmichaud/grocerytracker/internal/scraper"
	"jmichaud/grocerytracker/logger"
	"jmichaud/grocerytracker/services/server"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	root := &cobra.Command{
		Use:           "grocerytracker",
		Short:         "Grocery purchase history scraper and spending report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScrapeCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		logger.ForComponent("main").Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// signalContext cancels on SIGINT/SIGTERM so a run in progress stops at
// its next suspension point instead of being killed mid-write.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadConfig() (config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape and print the category report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			s, err := scraper.New(cfg)
			if err != nil {
				return err
			}

			records, err := s.Run(ctx, scraper.Credentials{
				Username: cfg.Username,
				Password: cfg.Password,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the category report over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			s, err := scraper.New(cfg)
			if err != nil {
				return err
			}

			srv := server.New(cfg, s)
			return srv.Listen(ctx, s.Metrics().Registry)
		},
	}
}
