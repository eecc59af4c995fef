package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:   "coursectl",
	Short: "coursectl is a CLI tool to interact with the CourseHub API",
	Long:  `A command-line interface for operators: bootstrap admin accounts and inspect or revoke device sessions.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "CourseHub server base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("COURSECTL_TOKEN"), "bearer token (defaults to COURSECTL_TOKEN)")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(adminCmd)
}
