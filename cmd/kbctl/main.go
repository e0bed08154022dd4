// Command kbctl runs knowledge-base maintenance against the database and
// blob store the server uses.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"knowledgebase/internal/config"
	"knowledgebase/internal/repository/postgres"
	postgresKB "knowledgebase/internal/repository/postgres/kb"
	serviceAuth "knowledgebase/internal/service/auth"
	serviceKB "knowledgebase/internal/service/kb"
	"knowledgebase/internal/storage/blob"
)

var (
	configFile string
	verbose    bool
)

// env is everything a command needs, built once before it runs.
type env struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	tables     *postgres.TableNames
	repos      serviceKB.Repositories
	authorizer *serviceAuth.RoleBasedAuthorizer
	kb         *serviceKB.Services
}

var app *env

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kbctl",
	Short: "Knowledge-base maintenance",
	Long: `kbctl migrates the schema, repairs workspace root folders, sweeps
orphaned blobs and moves workspaces in and out as markdown.

Settings come from the environment (and .env), overridden by an optional
kbctl.yaml given with --config.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return teardown() },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./kbctl.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(repairRootsCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(membersCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

// setup connects to the database and blob store and builds the services.
// Maintenance commands act as the operator, so access checks always pass.
func setup(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd:
		return nil
	}
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger()
	slog.SetDefault(logger)

	ctx := cmd.Context()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	blobStore, _, err := blob.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("create blob store: %w", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	repos := serviceKB.Repositories{
		Folders:   postgresKB.NewFolderRepository(repoConfig),
		Documents: postgresKB.NewDocumentRepository(repoConfig),
		Index:     postgresKB.NewIndexRepository(repoConfig),
		Assets:    postgresKB.NewAssetRepository(repoConfig),
	}
	txManager := postgres.NewTransactionManager(pool, logger)

	app = &env{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		tables:     repoConfig.Tables,
		repos:      repos,
		authorizer: serviceAuth.NewRoleBasedAuthorizer(postgresKB.NewMemberRepository(repoConfig), logger),
		kb:         serviceKB.SetupServices(repos, blobStore, txManager, serviceAuth.SystemAccess(), serviceKB.OptionsFromConfig(cfg), logger),
	}
	return nil
}

func teardown() error {
	if app != nil && app.pool != nil {
		app.pool.Close()
	}
	return nil
}
