package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Outputs the analytics snapshot as JSON",
	Long:  `Outputs the analytics snapshot of the last sync as JSON. With --refresh, fetches from GitHub first and updates the cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		doRefresh, _ := cmd.Flags().GetBool("refresh")
		cfg := mustConfig(cmd, doRefresh)
		session, store := newSession(cfg, logger)

		if doRefresh {
			if err := store.SaveState(refresh(cmd.Context(), session)); err != nil {
				logger.Printf("Failed to write cache: %v", err)
			}
		}
		st := session.Current()
		if st == nil {
			exitf("No cached data in %s. Run `github-dashboard sync` or pass --refresh.", store.Path())
		}

		// Marshal the snapshot into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(st.Snapshot, "", "  ")
		if err != nil {
			exitf("Failed to marshal results to JSON: %v", err)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.Flags().Bool("refresh", false, "Fetch from GitHub before printing")
}
