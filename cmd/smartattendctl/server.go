package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartattend/smartattend-go/pkg/audit"
	"github.com/smartattend/smartattend-go/pkg/config"
	"github.com/smartattend/smartattend-go/pkg/db"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/server"
	"github.com/smartattend/smartattend-go/pkg/server/endpoints"
	gormstore "github.com/smartattend/smartattend-go/pkg/store/gorm"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the SmartAttend isolation API server",
	Long: `Run the SmartAttend isolation API server.

Requires the environment variables SMARTATTEND_TOKEN_KEY and DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		tokenKey, ok := os.LookupEnv("SMARTATTEND_TOKEN_KEY")
		if !ok || tokenKey == "" {
			fmt.Fprintln(os.Stderr, "SMARTATTEND_TOKEN_KEY environment variable is required")
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		logger, err := zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to DB: %v\n", err)
			os.Exit(1)
		}

		audit.SetEnabled(cfg.AuditEnabled)
		auditStore, err := audit.NewStore()
		if err != nil {
			logger.Warn("audit database unavailable, events go to syslog only", zap.Error(err))
		}
		sink := audit.NewSink(audit.NewLogger(), auditStore, logger, cfg.AuditQueueSize)

		reg := registry.Default()
		st := gormstore.NewStoreWithLimits(database, reg, cfg.ListLimitDefault, cfg.ListLimitMax)

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(database, st, reg, sink, cfg, logger, []byte(tokenKey), host, port)

		endpoints.RegisterAll(s)

		logger.Info("server listening", zap.String("host", host), zap.String("port", port))
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
