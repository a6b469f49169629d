package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockScreener/internal/config"
	"StockScreener/internal/dashboard"
	"StockScreener/internal/report"
	"StockScreener/internal/scheduler"
)

var (
	cfgPath string
	useMock bool
	asJSON  bool
	plain   bool
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:   "screener",
		Short: "Technical and fundamental stock screener",
		Long: `screener fetches one year of daily prices and a fundamentals snapshot for a
ticker, computes SMA, RSI, MACD and Bollinger Bands, and issues a Buy/Sell/Hold
recommendation, either in a web dashboard or on the terminal.`,
		SilenceUsage: true,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "Use generated data instead of a live provider")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("[INFO] StockScreener starting...")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app := newApp(cfg, useMock)
			log.Printf("[INFO] data source: %s", app.Fetcher.Name())

			sched := scheduler.NewScheduler(app.Cache)
			if err := sched.RegisterAll(cfg.Cache.SweepCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			srv, err := dashboard.NewServer(app.Analyzer, app.Registry)
			if err != nil {
				return fmt.Errorf("init dashboard: %w", err)
			}
			httpSrv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      srv.Handler(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("[INFO] dashboard listening on %s", cfg.Server.Addr)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			// Wait for shutdown signal
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
				log.Println("[INFO] shutdown signal received, stopping...")
			case err, ok := <-errCh:
				if ok {
					return fmt.Errorf("http server: %w", err)
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				log.Printf("[ERROR] http shutdown: %v", err)
			}
			log.Println("[INFO] StockScreener stopped")
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <TICKER>",
		Short: "Analyze one ticker and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app := newApp(cfg, useMock)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.DataSource.Timeout)
			defer cancel()
			res, err := app.Analyzer.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			case plain:
				_, err = fmt.Fprint(out, report.FormatPlain(res))
			default:
				_, err = fmt.Fprint(out, report.RenderTerminal(res))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print unstyled text")
	return cmd
}
