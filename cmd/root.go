// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/naka-gawa/github-dashboard/internal/cache"
	"github.com/naka-gawa/github-dashboard/internal/config"
	"github.com/naka-gawa/github-dashboard/internal/gateway"
	"github.com/naka-gawa/github-dashboard/internal/usecase"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-dashboard",
	Short: "A CLI dashboard for your own GitHub activity.",
	Long: `github-dashboard fetches the authenticated user's pull requests, issues,
repositories, organizations, starred repositories and activity events,
and turns them into analytics and a searchable index.
The last successful refresh is cached locally, so analytics and search
work offline.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for hour/day buckets (overrides DASHBOARD_TIMEZONE)")
	rootCmd.PersistentFlags().String("cache", "", "Path of the cache file (overrides DASHBOARD_CACHE)")
}

// newLogger discards everything unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func exitf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// mustConfig loads the configuration and applies flag overrides. Commands
// that reach the network pass online=true so a missing token is reported up
// front.
func mustConfig(cmd *cobra.Command, online bool) *config.Config {
	cfg := config.Load()
	applyConfigFlags(cmd, cfg)
	if online {
		if err := cfg.Validate(); err != nil {
			exitf("Error: %v", err)
		}
	}
	return cfg
}

// applyConfigFlags lets --timezone and --cache win over the environment.
func applyConfigFlags(cmd *cobra.Command, cfg *config.Config) {
	if tz, _ := cmd.Flags().GetString("timezone"); tz != "" {
		cfg.Timezone = tz
	}
	if path, _ := cmd.Flags().GetString("cache"); path != "" {
		cfg.CachePath = path
	}
}

// newSession wires the gateway, the session and the cache, restoring the
// last cached state when there is one.
func newSession(cfg *config.Config, logger *log.Logger) (*usecase.Session, *cache.Store) {
	loc, err := cfg.Location()
	if err != nil {
		exitf("Error: %v", err)
	}

	var fetcher gateway.Fetcher
	if cfg.GitHubToken != "" {
		fetcher, err = gateway.NewGitHubGateway(cfg, logger)
		if err != nil {
			exitf("Failed to create GitHub gateway: %v", err)
		}
	}
	session := usecase.NewSession(fetcher, logger, usecase.WithSessionLocation(loc))

	store := cache.New(cfg.CachePath)
	cached, err := store.LoadState()
	if err != nil {
		logger.Printf("Ignoring unreadable cache: %v", err)
	}
	session.Restore(cached)
	return session, store
}
