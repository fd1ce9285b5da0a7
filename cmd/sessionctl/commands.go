package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sessionstore"
	"github.com/dmitrymomot/sessionstore/pkg/health"
)

var errConfirm = errors.New("sessionctl: refusing to clear without --yes")

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the session table and indexes if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, _ *sessionstore.Store) error {
				a.log.InfoContext(ctx, "session schema ready", slog.String("table", a.cfg.Table))
				return nil
			})
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *sessionstore.Store) error {
				resp := health.Run(ctx, health.Checks{"sessions": s.Ping}, health.WithLogger(a.log))
				out, err := json.MarshalIndent(resp, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return resp.Err()
			})
		},
	}
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *sessionstore.Store) error {
				n, err := s.Length(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a live session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *sessionstore.Store) error {
				sess, err := s.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if sess == nil {
					return fmt.Errorf("%w: %s", sessionstore.ErrNotFound, args[0])
				}
				out, err := json.MarshalIndent(sess, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}
}

func (a *app) destroyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <id>...",
		Short: "Delete sessions by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *sessionstore.Store) error {
				for _, id := range args {
					if err := s.Destroy(ctx, id); err != nil {
						return err
					}
				}
				a.log.InfoContext(ctx, "sessions destroyed", slog.Int("count", len(args)))
				return nil
			})
		},
	}
}

func (a *app) reapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Delete expired sessions once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *sessionstore.Store) error {
				n, err := s.Reap(ctx)
				if err != nil {
					return err
				}
				a.log.InfoContext(ctx, "removed expired sessions", slog.Int64("count", n))
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errConfirm
			}
			return a.withStore(cmd, func(ctx context.Context, s *sessionstore.Store) error {
				if err := s.Clear(ctx); err != nil {
					return err
				}
				a.log.InfoContext(ctx, "sessions cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all sessions")
	return cmd
}
