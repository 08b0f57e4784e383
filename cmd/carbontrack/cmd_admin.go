package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/types"
)

var (
	userFilter string
	userSearch string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Approve registrations and manage users",
}

var adminPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List registrations waiting for approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := client.Controller.Snapshot()
		if snap.AuthState != types.AuthAdmin {
			return fmt.Errorf("admin access required")
		}
		t := newTable("Pending registrations", "ID", "NAME", "EMAIL", "ORGANIZATION", "REGISTERED")
		for _, u := range snap.PendingUsers {
			t.add(u.ID, u.FirstName+" "+u.LastName, u.Email, u.Organization, u.RegisteredAt)
		}
		t.render(cmd.OutOrStdout())
		if s := snap.AdminStats; s != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d users, %d active this month, %.1f kg CO₂ across %d entries\n",
				s.TotalUsers, s.ActiveThisMonth, s.TotalCarbonTracked, s.TotalEntries)
		}
		return nil
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List approved users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := client.Controller.Users(types.UserFilter(userFilter), userSearch)
		if err != nil {
			return err
		}
		t := newTable("Users", "ID", "NAME", "EMAIL", "ROLE", "STATUS", "LAST ACTIVE")
		for _, u := range users {
			status := string(u.Status)
			if u.Status == types.StatusActive {
				status = successStyle.Render(status)
			} else {
				status = mutedStyle.Render(status)
			}
			t.add(u.ID, u.Name, u.Email, string(u.Role), status, u.LastActive)
		}
		t.render(cmd.OutOrStdout())
		return nil
	},
}

var adminApproveCmd = &cobra.Command{
	Use:   "approve <user-id>",
	Short: "Approve a pending registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], client.Controller.ApproveUser)
	},
}

var adminRejectCmd = &cobra.Command{
	Use:   "reject <user-id>",
	Short: "Reject a pending registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], client.Controller.RejectUser)
	},
}

var adminToggleCmd = &cobra.Command{
	Use:   "toggle <user-id>",
	Short: "Switch a user between active and inactive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		user, err := client.Controller.ToggleUserStatus(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Name, user.Status)
		return nil
	},
}

func runAction(cmd *cobra.Command, userID string, fn func(context.Context, string) (apiclient.ActionResult, error)) error {
	ctx, cancel := opContext(cmd)
	defer cancel()
	result, err := fn(ctx, userID)
	if err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("request failed with status %d", result.StatusCode)
	}
	return nil
}

func init() {
	adminUsersCmd.Flags().StringVarP(&userFilter, "filter", "f", string(types.FilterAll), "all, active, inactive or admins")
	adminUsersCmd.Flags().StringVarP(&userSearch, "search", "s", "", "Match name or email")

	adminCmd.AddCommand(adminPendingCmd, adminUsersCmd, adminApproveCmd, adminRejectCmd, adminToggleCmd)
}
