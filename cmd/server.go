package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jk-calendar/internal/app"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the calendar API server",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Starting calendar server...")
		app.ServerMain(provider)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
