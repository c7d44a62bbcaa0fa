package cmd

import (
	"fmt"
	"os"

	"github.com/naka-gawa/github-dashboard/internal/gateway"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Checks that GITHUB_TOKEN is accepted by the API",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfg := mustConfig(cmd, true)

		fetcher, err := gateway.NewGitHubGateway(cfg, logger)
		if err != nil {
			exitf("Failed to create GitHub gateway: %v", err)
		}
		if !fetcher.VerifyToken(cmd.Context()) {
			fmt.Fprintln(os.Stderr, "Token is invalid or expired.")
			os.Exit(1)
		}
		fmt.Println("Token is valid.")
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
