package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sessionstore"
	"github.com/dmitrymomot/sessionstore/pkg/logger"
	"github.com/dmitrymomot/sessionstore/pkg/orm/memory"
	"github.com/dmitrymomot/sessionstore/pkg/orm/mongo"
	"github.com/dmitrymomot/sessionstore/pkg/orm/postgres"
	"github.com/dmitrymomot/sessionstore/pkg/orm/redis"
)

type app struct {
	log *slog.Logger
	cfg config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "sessionctl",
		Short:             "Inspect and maintain a session store",
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg)
			if v, _ := cmd.Flags().GetBool("debug"); v {
				cfg.Log.Level = slog.LevelDebug
			}
			cfg.Log.Output = cmd.ErrOrStderr()

			a.cfg = cfg
			a.log = logger.NewWithSentry(cfg.Log, cfg.Sentry, logger.ValueExtractor("command"))
			cmd.SetContext(logger.WithValue(cmd.Context(), "command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Flush(2 * time.Second)
		},
	}

	f := root.PersistentFlags()
	f.String("connections", "", "YAML file with connection descriptors (env SESSIONSTORE_CONNECTIONS)")
	f.String("adapter", "", "adapter for --url: postgres, redis, mongo or memory (env SESSIONSTORE_ADAPTER)")
	f.String("url", "", "backend connection URL (env SESSIONSTORE_URL)")
	f.String("table", "", "session table or collection name (env SESSIONSTORE_TABLE)")
	f.Duration("timeout", 0, "overall command timeout (env SESSIONSTORE_TIMEOUT)")
	f.Bool("debug", false, "enable debug logging")

	root.AddCommand(
		a.migrateCmd(),
		a.countCmd(),
		a.healthCmd(),
		a.getCmd(),
		a.destroyCmd(),
		a.reapCmd(),
		a.clearCmd(),
	)
	return root
}

// applyFlags overrides environment values with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config) {
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"connections": &cfg.Connections,
		"adapter":     &cfg.Adapter,
		"url":         &cfg.URL,
		"table":       &cfg.Table,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *sessionstore.Store) error) error {
	ctx := cmd.Context()
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	opts, err := a.cfg.storeOptions()
	if err != nil {
		return err
	}
	opts = append(opts,
		sessionstore.WithLogger(a.log),
		sessionstore.WithAdapters(
			memory.New(),
			postgres.New(postgres.WithLogger(a.log)),
			redis.New(),
			mongo.New(),
		),
	)

	s, err := sessionstore.Open(ctx, opts...)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to open session store", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			a.log.WarnContext(ctx, "failed to close session store", slog.Any("error", err))
		}
	}()

	return fn(ctx, s)
}
