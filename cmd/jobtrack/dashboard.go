package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/jobtrack/internal/auth"
	"github.com/jonathan/jobtrack/internal/dashboard"
	"github.com/jonathan/jobtrack/internal/observability"
	"github.com/jonathan/jobtrack/internal/types"
	"github.com/spf13/cobra"
)

var (
	dashboardEmail string
	dashboardJSON  bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard stats and recent applications",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardEmail, "as", "", "Show the dashboard as this user")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "Print JSON instead of a summary box")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadStore(cfg)
	if err != nil {
		return err
	}

	var user *types.User
	if dashboardEmail != "" {
		user = &types.User{Email: dashboardEmail, Role: auth.RoleFor(dashboardEmail)}
	}
	d := dashboard.Build(user, st.List())

	if dashboardJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode dashboard: %w", err)
		}
		return nil
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintDashboard(d)
	return nil
}
