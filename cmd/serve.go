package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"safetx/api"
	"safetx/config"
	"safetx/db"
	"safetx/exception"
	"safetx/logx"
	"safetx/monitoring"
	"safetx/oracle"
	"safetx/service"
	"safetx/store"
	"safetx/validator"
)

var (
	serveConfigPath    string
	serveRateLimitPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transaction history API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to service YAML config")
	serveCmd.Flags().StringVar(&serveRateLimitPath, "tuning", "", "path to operational tuning INI")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultServiceConfig()
	if serveConfigPath != "" {
		loaded, err := config.LoadServiceConfig(serveConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	provider, err := db.NewProvider(cfg.Database.Backend, cfg.Database.Path, cfg.Database.DSN)
	if err != nil {
		return err
	}

	historyStore, err := store.NewGenericHistoryStore(provider)
	if err != nil {
		return err
	}
	defer historyStore.MustClose()

	var chainOracle oracle.Oracle
	if cfg.Oracle.Dev {
		logx.Warn("SERVE", "dev oracle enabled, no submission can pass approval checks against real chain state")
		chainOracle = oracle.NewMemoryOracle()
	} else {
		rpcOracle := oracle.NewRPCOracle(cfg.Oracle.Endpoint)
		defer rpcOracle.Close()
		chainOracle = rpcOracle
	}

	history := service.NewHistoryService(
		validator.NewConfirmationValidator(chainOracle),
		historyStore,
	)

	server := api.NewAPIServer(history, cfg.ListenAddr, config.Version)
	if serveRateLimitPath != "" {
		rlCfg, err := config.LoadRateLimitConfig(serveRateLimitPath)
		if err != nil {
			return err
		}
		server.ConfigureRateLimit(rlCfg.MaxRequests, time.Duration(rlCfg.WindowSeconds)*time.Second)
	}

	monitoring.MarkServiceUp()
	if cfg.MetricsAddr != "" {
		exception.SafeGo("metrics-server", func() {
			monitoring.Serve(cfg.MetricsAddr)
		})
	}

	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logx.Info("SERVE", "received ", sig, ", shutting down")
	return nil
}
