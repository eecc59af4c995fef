package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Manage device sessions",
	Aliases: []string{"sessions"},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions (own, or another user's with --user)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userUUID, _ := cmd.Flags().GetString("user")

		path := "/auth/sessions"
		if userUUID != "" {
			path = "/sessions/users/" + userUUID
		}

		var out struct {
			Sessions []map[string]any `json:"sessions"`
		}
		if err := doRequest(http.MethodGet, path, nil, &out); err != nil {
			return err
		}
		if len(out.Sessions) == 0 {
			fmt.Println("No active sessions.")
			return nil
		}
		rendered, err := yaml.Marshal(out.Sessions)
		if err != nil {
			return err
		}
		fmt.Print(string(rendered))
		return nil
	},
}

var sessionRevokeCmd = &cobra.Command{
	Use:   "revoke <session-id>",
	Short: "Revoke one session by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var out struct {
			Revoked bool `json:"revoked"`
		}
		if err := doRequest(http.MethodPost, "/sessions/"+args[0]+"/revoke", nil, &out); err != nil {
			return err
		}
		if out.Revoked {
			fmt.Println("Session revoked.")
		} else {
			fmt.Println("Session was already revoked.")
		}
		return nil
	},
}

var sessionRevokeAllCmd = &cobra.Command{
	Use:   "revoke-all <user-uuid>",
	Short: "Revoke every active session of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var out struct {
			Revoked int64 `json:"revoked"`
		}
		if err := doRequest(http.MethodPost, "/sessions/users/"+args[0]+"/revoke-all", nil, &out); err != nil {
			return err
		}
		fmt.Printf("Revoked %d session(s).\n", out.Revoked)
		return nil
	},
}

func init() {
	sessionListCmd.Flags().String("user", "", "user uuid to list sessions for (admin only)")
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionRevokeCmd)
	sessionCmd.AddCommand(sessionRevokeAllCmd)
}
