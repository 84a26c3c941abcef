package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"jk-calendar/internal/calendar"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
	Long:  `List users and onboard new ones (user + default calendar + owner grant).`,
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users with their calendars",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		users, err := provider.ListUsers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing users: %v\n", err)
			os.Exit(1)
		}

		if len(users) == 0 {
			fmt.Println("No users found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tCALENDARS")
		for _, user := range users {
			grants, err := provider.ListUserCalendars(ctx, user.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing calendars for %s: %v\n", user.Email, err)
				os.Exit(1)
			}

			cals := "-"
			if len(grants) > 0 {
				cals = ""
				for i, g := range grants {
					if i > 0 {
						cals += ", "
					}
					cals += fmt.Sprintf("%s (%s)", g.CalendarName, g.PermissionCode)
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", user.ID, user.Email, cals)
		}
		w.Flush()

		fmt.Printf("\nTotal users: %d\n", len(users))
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create [email]",
	Short: "Onboard a user with their default calendar",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		svc := calendar.NewService(provider, 30*time.Second)
		ob, err := svc.Onboard(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error onboarding user: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("User %d created with calendar %d ('%s').\n", ob.User.ID, ob.Calendar.ID, ob.Calendar.Name)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(createUserCmd)
}
