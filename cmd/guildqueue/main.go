// Command guildqueue runs the guild loot queue bot and its maintenance
// subcommands.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/guildqueue/internal/app"
	"github.com/heartmarshall/guildqueue/internal/config"
)

const programName = "guildqueue"

type cliKey struct{}

// cli is the state shared by subcommands once the root has loaded config.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger
}

func fromCmd(cmd *cobra.Command) *cli {
	c, _ := cmd.Context().Value(cliKey{}).(*cli)
	return c
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           programName,
		Short:         "Guild loot queue bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default $CONFIG_PATH or ./config.yaml)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			configFile = os.Getenv("CONFIG_PATH")
		}
		cfg, err := config.LoadFrom(configFile)
		if err != nil {
			return err
		}
		c := &cli{cfg: cfg, logger: app.NewLogger(cfg.Log)}
		cmd.SetContext(context.WithValue(cmd.Context(), cliKey{}, c))
		return nil
	}

	root.AddCommand(serveCommand())
	root.AddCommand(migrateCommand())
	root.AddCommand(tokenCommand())
	root.AddCommand(itemsCommand())
	root.AddCommand(versionCommand())
	return root
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the HTTP server and background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
}

func serve(cmd *cobra.Command) error {
	c := fromCmd(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, c.cfg, c.logger); err != nil {
		c.logger.Error("guildqueue failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := fromCmd(cmd)
			if err := app.Migrate(cmd.Context(), c.cfg, c.logger); err != nil {
				c.logger.Error("migrate failed", slog.String("error", err.Error()))
				return err
			}
			c.logger.Info("migrations up to date")
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		// Overrides the root hook: printing the version needs no config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion())
		},
	}
}
