package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Bootstrap an admin account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		college, _ := cmd.Flags().GetString("college")
		allow, _ := cmd.Flags().GetInt("student-allow-count")

		if email == "" || password == "" || college == "" {
			return fmt.Errorf("--email, --password and --college are required")
		}

		body := map[string]any{
			"email_id":                  email,
			"password":                  password,
			"college_name":              college,
			"total_student_allow_count": allow,
		}
		var out struct {
			UUID string `json:"uuid_id"`
		}
		if err := doRequest(http.MethodPost, "/admins", body, &out); err != nil {
			return err
		}
		fmt.Printf("Admin created: %s\n", out.UUID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().String("email", "", "admin email")
	adminCreateCmd.Flags().String("password", "", "admin password")
	adminCreateCmd.Flags().String("college", "", "college name")
	adminCreateCmd.Flags().Int("student-allow-count", 100, "maximum students the admin may register")
	adminCmd.AddCommand(adminCreateCmd)
}
