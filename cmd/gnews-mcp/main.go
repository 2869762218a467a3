// Command gnews-mcp runs the GNews MCP server over stdio (the default) or
// streamable HTTP, and provides maintenance subcommands for the config file
// and the persistent cache.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gnewsmcp "github.com/ferro-labs/gnews-mcp"
	"github.com/ferro-labs/gnews-mcp/internal/cache"
	"github.com/ferro-labs/gnews-mcp/internal/logging"
	"github.com/ferro-labs/gnews-mcp/internal/mcpserver"
	"github.com/ferro-labs/gnews-mcp/internal/version"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "gnews-mcp",
		Short:         "MCP server exposing GNews search and top-headlines tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a JSON/YAML config file")

	root.AddCommand(serveCmd(), validateCmd(), cacheCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional config file, and environment
// overrides.
func loadConfig() (gnewsmcp.Config, error) {
	cfg := gnewsmcp.DefaultConfig()
	if cfgPath != "" {
		loaded, err := gnewsmcp.LoadConfig(cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	if err := gnewsmcp.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat)
			if err := gnewsmcp.ValidateConfig(cfg); err != nil {
				return err
			}

			svc, err := gnewsmcp.NewService(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					slog.Warn("closing cache", "error", err)
				}
			}()

			server := mcpserver.New(svc)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			switch transport {
			case "stdio":
				slog.Info("serving MCP over stdio",
					"version", version.Short(),
					"persistent_cache", cfg.PersistentTierEnabled())
				return mcpserver.RunStdio(ctx, server)
			case "http":
				return serveHTTP(ctx, server, cfg)
			default:
				return fmt.Errorf("unknown transport %q: use stdio or http", transport)
			}
		},
	}
	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "MCP transport: stdio or http")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gnewsmcp.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if err := gnewsmcp.ApplyEnv(cfg); err != nil {
				return err
			}
			if err := gnewsmcp.ValidateConfig(*cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Config is valid\n")
			fmt.Fprintf(cmd.OutOrStdout(), "  Bind:             %s\n", cfg.Addr())
			fmt.Fprintf(cmd.OutOrStdout(), "  Persistent cache: %v\n", cfg.PersistentTierEnabled())
			fmt.Fprintf(cmd.OutOrStdout(), "  Search TTL:       %s\n", cfg.SearchTTL())
			fmt.Fprintf(cmd.OutOrStdout(), "  Headlines TTL:    %s\n", cfg.HeadlinesTTL())
			return nil
		},
	}
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Persistent cache maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired entries from the persistent cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var store *cache.SQLStore
			switch {
			case cfg.CacheDSN != "":
				store, err = cache.NewPostgresStore(cfg.CacheDSN)
			case cfg.CacheDir != "":
				store, err = cache.NewSQLiteStore(cfg.CacheDir)
			default:
				return fmt.Errorf("no persistent cache configured: set GNEWS_CACHE_DIR or GNEWS_CACHE_DSN")
			}
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.PurgeExpired()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired entries\n", n)
			return nil
		},
	})
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gnews-mcp", version.String())
		},
	}
}
