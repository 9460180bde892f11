package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"elite_blog/internal/app"
	"elite_blog/internal/config"
	"elite_blog/internal/lib/logger/handlers/slogpretty"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/storage/postgresql"

	"github.com/spf13/cobra"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// @title elite_blog API
// @version 1.0
// @description Blog, gallery and events backend with an admin area.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "elite_blog",
		Short:         "Blog, gallery and events backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML), defaults to $CONFIG_PATH")

	cmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		sweepCmd(&configPath),
		adminCmd(&configPath),
	)

	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the scheduled sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad(*configPath)
			log := setupLogger(cfg.Env)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, log, cfg)
			if err != nil {
				return err
			}

			if err := application.Bootstrap(ctx); err != nil {
				application.Stop()
				return err
			}

			sweeperDone := application.StartSweeper(ctx)

			serverErr := make(chan error, 1)
			go func() {
				serverErr <- application.HTTPServer.Start()
			}()

			log.Info("application started", slog.String("env", cfg.Env))

			select {
			case <-ctx.Done():
			case err = <-serverErr:
				if err != nil {
					log.Error("http server failed", sl.Err(err))
				}
				stop()
			}

			application.Stop()
			<-sweeperDone

			log.Info("application stopped")

			return err
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad(*configPath)
			log := setupLogger(cfg.Env)

			db, err := postgresql.New(cmd.Context(), cfg.DSN)
			if err != nil {
				return err
			}
			defer db.Stop()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}

			log.Info("schema is up to date")

			return nil
		},
	}
}

func sweepCmd(configPath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored files no record references",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad(*configPath)
			log := setupLogger(cfg.Env)

			application, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}
			defer application.Stop()

			report, err := application.Sweeper.Run(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			for _, o := range report.Orphans {
				fmt.Fprintln(cmd.OutOrStdout(), o.Key)
			}
			log.Info("sweep finished",
				slog.Bool("dry_run", report.DryRun),
				slog.Int("orphans", len(report.Orphans)),
				slog.Int("deleted", len(report.Deleted)),
				slog.Int("failed", len(report.Failed)),
			)

			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only list orphaned files")

	return cmd
}

func adminCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var (
		email    string
		password string
		reset    bool
	)

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin, or reset its password with --reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad(*configPath)
			log := setupLogger(cfg.Env)

			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}

			application, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}
			defer application.Stop()

			if reset {
				if err := application.Users.ResetPassword(cmd.Context(), email, password); err != nil {
					return err
				}
				log.Info("password reset", slog.String("email", email))
				return nil
			}

			id, err := application.Users.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			log.Info("admin created", slog.String("admin_id", id.String()))

			return nil
		},
	}

	create.Flags().StringVar(&email, "email", "", "Admin email")
	create.Flags().StringVar(&password, "password", "", "Admin password, defaults to $ADMIN_PASSWORD")
	create.Flags().BoolVar(&reset, "reset", false, "Reset the password of an existing admin")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)

	return cmd
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(os.Stdout))
}
