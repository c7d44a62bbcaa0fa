package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/naka-gawa/github-dashboard/internal/usecase"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetches everything from GitHub and refreshes the local cache",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfg := mustConfig(cmd, true)
		session, store := newSession(cfg, logger)

		st := refresh(cmd.Context(), session)
		if err := store.SaveState(st); err != nil {
			exitf("Failed to write cache: %v", err)
		}

		e := st.Entities
		fmt.Printf("Synced %s at %s\n", e.Login, st.RefreshedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  pull requests: %d\n", len(e.PullRequests))
		fmt.Printf("  issues:        %d\n", len(e.Issues))
		fmt.Printf("  repositories:  %d\n", len(e.Repositories))
		fmt.Printf("  organizations: %d\n", len(e.Organizations))
		fmt.Printf("  starred:       %d\n", len(e.Starred))
		if len(st.Degraded) > 0 {
			fmt.Printf("  degraded:      %s\n", strings.Join(st.Degraded, ", "))
		}
		if st.MappingFailures > 0 {
			fmt.Printf("  skipped records: %d\n", st.MappingFailures)
		}
		fmt.Printf("Cached to %s\n", store.Path())
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// refresh runs one refresh cycle, exiting with an explicit message on an
// invalid credential.
func refresh(ctx context.Context, session *usecase.Session) *usecase.State {
	st, err := session.Refresh(ctx)
	if errors.Is(err, domain.ErrUnauthorized) {
		exitf("Authentication failed: the token is invalid or expired. Update GITHUB_TOKEN and retry.")
	}
	if err != nil {
		exitf("Failed to refresh: %v", err)
	}
	return st
}
