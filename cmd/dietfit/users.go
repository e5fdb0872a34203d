package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/health"
	"github.com/kalambet/dietfit/internal/silhouette"
)

// --- users ---

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List, inspect, update or delete user records",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetInt("skip")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := loggedIn()
		if err != nil {
			return err
		}
		users, err := e.client.ListUsers(cmd.Context(), skip, limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(w, "No users found.")
			return nil
		}
		for _, u := range users {
			fmt.Fprintf(w, "%s  %-30s  %s\n", colorize(colorCyan, fmt.Sprintf("%5d", u.ID)), u.Email, u.DisplayName())
		}
		return nil
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a user record and its health metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := loggedIn()
		if err != nil {
			return err
		}

		u, err := e.client.GetUser(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := map[string]any{"user": u}
		if h, err := e.client.UserHealth(cmd.Context(), id); err == nil {
			out["health"] = h
		} else {
			printWarning("Health metrics unavailable: %v", err)
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id> <key=value>...",
	Short: "Update fields of a user record",
	Long: `Update fields of a user record.

Keys: name, email, height_cm, weight_kg, gender, age, activity_level,
waist_cm, neck_cm, hip_cm, target_weight_kg.

Examples:
  dietfit users update 7 weight_kg=71.5 target_weight_kg=68
  dietfit users update 7 activity_level=light`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		upd, err := parseUserUpdate(args[1:])
		if err != nil {
			return err
		}

		e, err := loggedIn()
		if err != nil {
			return err
		}
		u, err := e.client.UpdateUser(cmd.Context(), id, upd)
		if err != nil {
			return err
		}
		printSuccess("Updated user %d (%s)", u.ID, u.Email)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !confirm {
			printWarning("This will permanently delete user %d. Use --confirm to proceed.", id)
			return nil
		}

		e, err := loggedIn()
		if err != nil {
			return err
		}
		if err := e.client.DeleteUser(cmd.Context(), id); err != nil {
			return err
		}
		printSuccess("Deleted user %d", id)
		return nil
	},
}

// parseUserUpdate turns key=value pairs into a partial update.
func parseUserUpdate(pairs []string) (apiclient.UserUpdate, error) {
	var upd apiclient.UserUpdate
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || value == "" {
			return upd, fmt.Errorf("invalid field %q: want key=value", p)
		}

		switch key {
		case "name":
			upd.Name = &value
		case "email":
			upd.Email = &value
		case "gender":
			g, err := silhouette.ParseGender(value)
			if err != nil {
				return upd, err
			}
			s := g.String()
			upd.Gender = &s
		case "activity_level":
			level := health.ActivityLevel(value)
			if _, err := level.Multiplier(); err != nil {
				return upd, err
			}
			upd.ActivityLevel = &level
		case "age":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return upd, fmt.Errorf("invalid age %q", value)
			}
			upd.Age = &n
		case "height_cm", "weight_kg", "waist_cm", "neck_cm", "hip_cm", "target_weight_kg":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 {
				return upd, fmt.Errorf("invalid %s %q: must be a positive number", key, value)
			}
			*measurementField(&upd, key) = &f
		default:
			return upd, fmt.Errorf("unknown field %q", key)
		}
	}
	return upd, nil
}

func measurementField(upd *apiclient.UserUpdate, key string) **float64 {
	switch key {
	case "height_cm":
		return &upd.HeightCm
	case "weight_kg":
		return &upd.WeightKg
	case "waist_cm":
		return &upd.WaistCm
	case "neck_cm":
		return &upd.NeckCm
	case "hip_cm":
		return &upd.HipCm
	}
	return &upd.TargetWeightKg
}

func init() {
	usersListCmd.Flags().Int("skip", 0, "number of users to skip")
	usersListCmd.Flags().Int("limit", 100, "maximum number of users to list")
	usersDeleteCmd.Flags().Bool("confirm", false, "confirm deletion")

	usersCmd.AddCommand(usersListCmd, usersShowCmd, usersUpdateCmd, usersDeleteCmd)
}

// --- admin ---

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administer accounts (superusers only)",
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetInt("skip")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := loggedIn()
		if err != nil {
			return err
		}
		list, err := e.client.AdminListUsers(cmd.Context(), skip, limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		st := list.Statistics
		fmt.Fprintf(w, "%s total, %s active, %s inactive, %s admins\n\n",
			colorize(colorBold, strconv.Itoa(st.TotalUsers)),
			colorize(colorGreen, strconv.Itoa(st.ActiveUsers)),
			colorize(colorGray, strconv.Itoa(st.InactiveUsers)),
			colorize(colorYellow, strconv.Itoa(st.AdminUsers)),
		)
		for _, u := range list.Users {
			flags := ""
			if u.IsSuperuser {
				flags += colorize(colorYellow, " [admin]")
			}
			if !u.IsActive {
				flags += colorize(colorGray, " [inactive]")
			}
			fmt.Fprintf(w, "%s  %-30s %s\n", colorize(colorCyan, fmt.Sprintf("%5d", u.ID)), u.Email, flags)
		}
		return nil
	},
}

func toggleCommand(use, short string, toggle func(*apiclient.Client, *cobra.Command, int) (*apiclient.ToggleResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := loggedIn()
			if err != nil {
				return err
			}
			res, err := toggle(e.client, cmd, id)
			if err != nil {
				return err
			}
			printSuccess("%s", res.Message)
			return nil
		},
	}
}

var adminToggleAdminCmd = toggleCommand("toggle-admin", "Grant or revoke superuser rights",
	func(c *apiclient.Client, cmd *cobra.Command, id int) (*apiclient.ToggleResult, error) {
		return c.ToggleAdmin(cmd.Context(), id)
	})

var adminToggleActiveCmd = toggleCommand("toggle-active", "Activate or deactivate an account",
	func(c *apiclient.Client, cmd *cobra.Command, id int) (*apiclient.ToggleResult, error) {
		return c.ToggleActive(cmd.Context(), id)
	})

func init() {
	adminListCmd.Flags().Int("skip", 0, "number of users to skip")
	adminListCmd.Flags().Int("limit", 100, "maximum number of users to list")

	adminCmd.AddCommand(adminListCmd, adminToggleAdminCmd, adminToggleActiveCmd)
}
