package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/importer"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage events",
	Long:  `Inspect a calendar's events and bulk-import them from CSV exports.`,
}

var weekFlag string

var listEventsCmd = &cobra.Command{
	Use:   "list [calendar-id]",
	Short: "List a calendar's events for a week",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		calID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid calendar ID: %v\n", err)
			os.Exit(1)
		}

		date := time.Now().UTC()
		if weekFlag != "" {
			date, err = time.Parse("2006-01-02", weekFlag)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid date: %v\n", err)
				os.Exit(1)
			}
		}

		svc := calendar.NewService(provider, 30*time.Second)
		events, err := svc.WeekOf(ctx, calID, date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing events: %v\n", err)
			os.Exit(1)
		}

		monday, sundayEnd := calendar.WeekRange(date)
		fmt.Printf("Week %s - %s\n", monday.Format("2006-01-02"), sundayEnd.Format("2006-01-02"))

		if len(events) == 0 {
			fmt.Println("No events.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTART\tEND\tLOCATION")
		for _, event := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				event.ID, event.Title,
				event.Start.Format(time.RFC3339), event.End.Format(time.RFC3339),
				event.Location)
		}
		w.Flush()
	},
}

var importEventsCmd = &cobra.Command{
	Use:   "import [calendar-id] [csv-file]",
	Short: "Import events from a CSV export",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		calID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid calendar ID: %v\n", err)
			os.Exit(1)
		}

		f, err := os.Open(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening CSV file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		svc := calendar.NewService(provider, 30*time.Second)
		created, err := importer.Import(ctx, svc, calID, f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed after %d events: %v\n", created, err)
			os.Exit(1)
		}

		fmt.Printf("Imported %d events into calendar %d.\n", created, calID)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(listEventsCmd)
	eventsCmd.AddCommand(importEventsCmd)
	listEventsCmd.Flags().StringVar(&weekFlag, "week", "", "date inside the week to list (YYYY-MM-DD, default today)")
}
