package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shakespeare-advisor/advisor-engine/internal/cache"
	"github.com/shakespeare-advisor/advisor-engine/internal/catalog"
	"github.com/shakespeare-advisor/advisor-engine/internal/config"
	"github.com/shakespeare-advisor/advisor-engine/internal/rpc"
	"github.com/shakespeare-advisor/advisor-engine/internal/store"
)

var errNoDatabase = errors.New("advisorctl: --database-url or DATABASE_URL is required")

// newRootCmd builds the command tree. Flags default to the environment so
// the tool reads the same .env as the server.
func newRootCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "advisorctl",
		Short:        "Administer the advisor engine",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres:// or sqlite:// database url")
	pf.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "redis url of the snapshot cache (optional)")
	pf.StringVar(&cfg.EncoderAlphabet, "alphabet", cfg.EncoderAlphabet, "share code alphabet")
	pf.IntVar(&cfg.EncoderLength, "length", cfg.EncoderLength, "share code length")
	pf.Int64Var(&cfg.EncoderMultiplier, "multiplier", cfg.EncoderMultiplier, "share code multiplier")

	root.AddCommand(
		newEncodeCmd(cfg),
		newDecodeCmd(cfg),
		newMigrateCmd(cfg, logger),
		newValidateCmd(),
		newSeedCmd(cfg, logger),
		newCallCmd(),
	)
	return root
}

// ─── SHARE CODES ──────────────────────────────────────────────────────────────

func newEncodeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <id>",
		Short: "Print the share code of an inquiry id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := cfg.Encoder()
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 0 {
				return fmt.Errorf("advisorctl: %q is not a non-negative id", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc.Encode(id))
			return nil
		},
	}
}

func newDecodeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <code>",
		Short: "Print the inquiry id of a share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := cfg.Encoder()
			if err != nil {
				return err
			}
			id, err := enc.Decode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

// ─── DATABASE ─────────────────────────────────────────────────────────────────

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newMigrateCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info("schema applied")
			return nil
		},
	}
}

// ─── SEEDS ────────────────────────────────────────────────────────────────────

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.yaml>",
		Short: "Check a configuration seed without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			data := snap.Data()
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d declarations, %d questions, %d pages, %d technologies\n",
				len(data.Declarations), len(data.Questions), len(data.Pages), len(data.Technologies))
			return nil
		},
	}
}

func newSeedCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Replace the stored configuration with a seed file",
		Long: "Replace the stored configuration with a seed file. When a Redis URL is\n" +
			"set the shared snapshot cache is invalidated so every replica reloads.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			var snapCache catalog.SnapshotCache
			if cfg.RedisURL != "" {
				client, err := cache.Connect(ctx, cfg.RedisURL)
				if err != nil {
					return err
				}
				defer client.Close()
				snapCache = cache.NewSnapshotCache(client, cache.DefaultTTL)
			}

			if err := catalog.NewLoader(st, snapCache, logger).Seed(ctx, snap); err != nil {
				return err
			}
			logger.Info("configuration seeded", "file", args[0])
			return nil
		},
	}
}

// ─── GRPC ─────────────────────────────────────────────────────────────────────

func newCallCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:     "call <method> [json]",
		Short:   "Call an advisor.v1.Engine method on a running server",
		Example: `  advisorctl call TechnologyScore '{"code":"QZXSWD","technology_id":1}'`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := map[string]any{}
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &in); err != nil {
					return fmt.Errorf("advisorctl: request body: %w", err)
				}
			}

			client, conn, err := rpc.Dial(addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			out, err := client.Call(ctx, args[0], in)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "server address")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "call timeout")
	return cmd
}
