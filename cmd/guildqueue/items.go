package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/guildqueue/internal/app"
	"github.com/heartmarshall/guildqueue/internal/domain"
)

// cliActor is the leader identity used for maintenance from the shell.
var cliActor = domain.Actor{Nick: "cli", Role: domain.RoleLeader}

func itemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Inspect and edit the auction items",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List items with their queues",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withBoard(cmd, func(ctx context.Context, b *app.Board) error {
					snap, err := b.Snapshot(ctx)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					for _, q := range snap {
						fmt.Fprintf(out, "%s\t%d\t%s\n", q.Item, len(q.Members), strings.Join(q.Members, ", "))
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add an item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withBoard(cmd, func(ctx context.Context, b *app.Board) error {
					added, err := b.AddItem(ctx, cliActor, args[0])
					if err != nil {
						return err
					}
					report(cmd, added, "added", "already exists", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Remove an item and its queue",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withBoard(cmd, func(ctx context.Context, b *app.Board) error {
					removed, err := b.RemoveItem(ctx, cliActor, args[0])
					if err != nil {
						return err
					}
					report(cmd, removed, "removed", "not found", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

func withBoard(cmd *cobra.Command, fn func(ctx context.Context, b *app.Board) error) error {
	c := fromCmd(cmd)
	b, err := app.OpenBoard(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(cmd.Context(), b)
}

func report(cmd *cobra.Command, changed bool, yes, no, item string) {
	status := no
	if changed {
		status = yes
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", item, status)
}
